package ports

// LogoutJob is a best-effort backend logout for a session that was cleared locally.
type LogoutJob struct {
	SessionID   string
	AccessToken string
}

// LogoutQueue accepts logout jobs without blocking the caller on the backend.
type LogoutQueue interface {
	Enqueue(job LogoutJob)
}
