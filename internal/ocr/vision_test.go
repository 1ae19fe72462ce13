package ocr

import (
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"
)

func TestAnnotationText(t *testing.T) {
	text, err := annotationText(&visionpb.AnnotateImageResponse{
		FullTextAnnotation: &visionpb.TextAnnotation{Text: "  Hemoglobin 11.2 g/dL\n"},
	})
	require.NoError(t, err)
	require.Equal(t, "Hemoglobin 11.2 g/dL", text)
}

func TestAnnotationText_NoAnnotation(t *testing.T) {
	text, err := annotationText(&visionpb.AnnotateImageResponse{})
	require.NoError(t, err)
	require.Empty(t, text)
}

func TestAnnotationText_AnnotateError(t *testing.T) {
	_, err := annotationText(&visionpb.AnnotateImageResponse{
		Error: &status.Status{Message: "bad image payload"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad image payload")
}

func TestIsPDF(t *testing.T) {
	require.True(t, isPDF("labs.pdf"))
	require.True(t, isPDF("LABS.PDF"))
	require.False(t, isPDF("scan.png"))
	require.False(t, isPDF("report"))
}
