package transfer

type PostCreation struct {
	PageID          int64             `json:"page_id"`
	Title           string            `json:"title"`
	PlatformContent map[string]string `json:"platform_content"`
	MediaKeys       []string          `json:"media_keys"`
	Status          string            `json:"status"`
	ScheduledTime   string            `json:"scheduled_time"`
}

type PostUpdateRequest struct {
	Title           *string           `json:"title"`
	PlatformContent map[string]string `json:"platform_content"`
	MediaKeys       []string          `json:"media_keys"`
	Status          *string           `json:"status"`
	ScheduledTime   *string           `json:"scheduled_time"`
}

type RestoreRequest struct {
	TargetPageID *int64 `json:"target_page_id"`
}

type PageCreation struct {
	Name        string          `json:"name"`
	AccessToken string          `json:"access_token"`
	Connected   map[string]bool `json:"connected"`
	Simulation  bool            `json:"simulation"`
}
