package ocr

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const visionTimeout = 60 * time.Second

// Inline file annotation is capped by the API; five pages covers typical
// lab reports.
var visionPDFPages = []int32{1, 2, 3, 4, 5}

type visionConfig struct {
	CredentialsFile string `json:"credentials_file"`
}

// visionExtractor runs DOCUMENT_TEXT_DETECTION through the GCP Vision API.
// Images go through BatchAnnotateImages; PDFs through the inline file
// annotation path.
type visionExtractor struct {
	credentialsFile string
}

func (e *visionExtractor) Name() string {
	return "vision"
}

func (e *visionExtractor) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, visionTimeout)
	defer cancel()

	var opts []option.ClientOption
	if e.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(e.credentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if isPDF(filename) {
		return annotatePDF(ctx, client, data)
	}
	return annotateImage(ctx, client, data)
}

func annotateImage(ctx context.Context, client *vision.ImageAnnotatorClient, data []byte) (string, error) {
	resp, err := client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image:    &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	return annotationText(resp.Responses[0])
}

func annotatePDF(ctx context.Context, client *vision.ImageAnnotatorClient, data []byte) (string, error) {
	resp, err := client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{Content: data, MimeType: "application/pdf"},
				Features:    []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
				Pages:       visionPDFPages,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	var parts []string
	for _, page := range resp.Responses[0].Responses {
		if page == nil {
			continue
		}
		text, err := annotationText(page)
		if err != nil {
			return "", err
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func annotationText(resp *visionpb.AnnotateImageResponse) (string, error) {
	if resp.Error != nil && resp.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", resp.Error.Message)
	}
	if resp.FullTextAnnotation == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.FullTextAnnotation.Text), nil
}

func isPDF(filename string) bool {
	return strings.EqualFold(path.Ext(filename), ".pdf")
}

func createVisionFactory(args interface{}) (Extractor, error) {
	cfg := &visionConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &visionExtractor{credentialsFile: strings.TrimSpace(cfg.CredentialsFile)}, nil
}

func init() {
	Register("vision", createVisionFactory)
}
