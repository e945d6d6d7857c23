package dto

// GradeSubmissionRequest carries a grader's score and written feedback.
// An optional feedback file arrives as a multipart form part.
type GradeSubmissionRequest struct {
	Score    float64 `json:"score" form:"score" validate:"gte=0,lte=999.99"`
	Feedback string  `json:"feedback" form:"feedback" validate:"max=5000"`
}
