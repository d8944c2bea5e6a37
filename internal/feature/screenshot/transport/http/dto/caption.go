package dto

// CaptionRes は POST /caption のレスポンスです。
type CaptionRes struct {
	Caption   string `json:"caption"`
	CaptionFR string `json:"caption_fr"`
	TagsEN    string `json:"tags_en"`
	TagsFR    string `json:"tags_fr"`
}
