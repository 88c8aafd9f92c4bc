package api

// Identity is the authenticated operator as reported by GET /me.
type Identity struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	WorkspaceID   int64  `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type sourceRequest struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
	Enabled  bool   `json:"enabled"`
}

type runRequest struct {
	AutoPublish bool `json:"auto_publish"`
}

// RunResult identifies the pipeline job the control service enqueued.
type RunResult struct {
	EnqueuedJobID int64 `json:"enqueued_job_id"`
}

type okResponse struct {
	OK bool `json:"ok"`
}
