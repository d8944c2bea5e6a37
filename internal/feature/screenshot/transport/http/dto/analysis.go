// Package dto はscreenshotフィーチャーのリクエスト・レスポンス型を定義します。
package dto

import "screenshot_backend/internal/feature/screenshot/domain/entity"

// AnalysisReq は POST /analyze のリクエストボディです。
type AnalysisReq struct {
	ImageURI      string `json:"imageUri" binding:"required"`
	Description   string `json:"description"`
	DescriptionEN string `json:"description_en"`
	Tags          string `json:"tags"`
	TagsEN        string `json:"tags_en"`
	CreationTime  int64  `json:"creationTime"`
}

// Entity converts the request to a domain analysis.
func (r AnalysisReq) Entity() entity.Analysis {
	return entity.Analysis{
		ImageURI:      r.ImageURI,
		Description:   r.Description,
		DescriptionEN: r.DescriptionEN,
		Tags:          r.Tags,
		TagsEN:        r.TagsEN,
		CreationTime:  r.CreationTime,
	}
}

// AnalysisRes は解析結果1件のレスポンスです。
type AnalysisRes struct {
	ID            uint   `json:"id"`
	ImageURI      string `json:"imageUri"`
	Description   string `json:"description"`
	DescriptionEN string `json:"description_en"`
	Tags          string `json:"tags"`
	TagsEN        string `json:"tags_en"`
	CreationTime  int64  `json:"creationTime"`
}

// FromEntity はドメインモデルをレスポンスに変換します。
func FromEntity(a *entity.Analysis) AnalysisRes {
	return AnalysisRes{
		ID:            a.ID,
		ImageURI:      a.ImageURI,
		Description:   a.Description,
		DescriptionEN: a.DescriptionEN,
		Tags:          a.Tags,
		TagsEN:        a.TagsEN,
		CreationTime:  a.CreationTime,
	}
}

// NotAnalyzedRes is returned by GET /analyze?imageUri= when nothing is stored.
type NotAnalyzedRes struct {
	AlreadyAnalyzed bool `json:"alreadyAnalyzed"`
}

// ErrorRes はエラーレスポンスです。
type ErrorRes struct {
	Error string `json:"error"`
}
