// Package vision はGoogle Cloud Vision APIを使用した画像ラベル検出クライアントを提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"screenshot_backend/internal/feature/screenshot/domain/entity"
	"screenshot_backend/internal/feature/screenshot/usecase"
)

// MaxLabels はリクエストごとに取得するラベルの最大数です。
const MaxLabels = 15

type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// VisionLabeler はGoogle Cloud Vision APIのLABEL_DETECTIONで画像のラベルを検出します。
type VisionLabeler struct {
	annotate annotateFunc
	close    func() error
}

// VisionLabelerがLabelerを実装していることをコンパイル時に検証します。
var _ usecase.Labeler = (*VisionLabeler)(nil)

// NewVisionLabeler はADCを使用してVisionLabelerの新しいインスタンスを生成します。
func NewVisionLabeler(ctx context.Context) (*VisionLabeler, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionLabeler{
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
			return client.BatchAnnotateImages(ctx, req)
		},
		close: client.Close,
	}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionLabeler) Close() error {
	if v.close == nil {
		return nil
	}
	return v.close()
}

// Labels は画像バイト列からラベルを検出します。
func (v *VisionLabeler) Labels(ctx context.Context, image []byte) ([]entity.Label, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: MaxLabels},
				},
			},
		},
	}

	resp, err := v.annotate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	return labelsFrom(resp)
}

func labelsFrom(resp *visionpb.BatchAnnotateImagesResponse) ([]entity.Label, error) {
	if resp == nil || len(resp.Responses) == 0 {
		return nil, nil
	}
	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	labels := make([]entity.Label, 0, len(resp.Responses[0].LabelAnnotations))
	for _, l := range resp.Responses[0].LabelAnnotations {
		labels = append(labels, entity.Label{
			Description: l.Description,
			Score:       l.Score,
		})
	}
	return labels, nil
}
