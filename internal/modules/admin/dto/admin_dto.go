package dto

type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

type JobRunResponse struct {
	Job        string `json:"job"`
	DurationMS int64  `json:"duration_ms"`
}
