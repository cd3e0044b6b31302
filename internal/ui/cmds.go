package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"filevault/internal/admin"
	"filevault/internal/api"
	"filevault/internal/files"
	"filevault/internal/session"
	"filevault/internal/share"
	"filevault/internal/upload"
)

type errMsg string
type noticeMsg string
type authedMsg *session.Session
type loggedOutMsg struct{}
type filesMsg []api.FileRecord
type reconciledMsg struct{}
type progressTickMsg time.Time
type uploadDoneMsg upload.Result
type uploadFailedMsg string
type downloadDoneMsg string
type shareCreatedMsg api.ShareLink
type adminMsg admin.Snapshot
type usersMsg []api.User

func loginCmd(s *session.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		if err := s.Login(context.Background(), email, password); err != nil {
			return errMsg(authErrText(err, "login failed"))
		}
		return authedMsg(s.Current())
	}
}

func registerCmd(s *session.Store, username, email, password string) tea.Cmd {
	return func() tea.Msg {
		if err := s.Register(context.Background(), username, email, password); err != nil {
			return errMsg(authErrText(err, "registration failed"))
		}
		return authedMsg(s.Current())
	}
}

func logoutCmd(s *session.Store) tea.Cmd {
	return func() tea.Msg {
		if err := s.Logout(); err != nil {
			return errMsg(err.Error())
		}
		return loggedOutMsg{}
	}
}

func refreshProfileCmd(s *session.Store) tea.Cmd {
	return func() tea.Msg {
		if err := s.RefreshProfile(context.Background()); err != nil {
			return errMsg(failText(err, "failed to refresh profile"))
		}
		return reconciledMsg{}
	}
}

func loadFilesCmd(c *files.Collection, filters api.SearchFilters) tea.Cmd {
	return func() tea.Msg {
		records, err := c.Load(context.Background(), filters)
		if err != nil {
			return errMsg(failText(err, "failed to load files"))
		}
		return filesMsg(records)
	}
}

// uploadCmd runs the whole upload including the orchestrator's
// reconciliation pass, so by the time uploadDoneMsg arrives the
// collection and session already hold the server's fresh numbers.
func uploadCmd(o *upload.Orchestrator, paths []string, directory string) tea.Cmd {
	return func() tea.Msg {
		res, err := o.Upload(context.Background(), paths, directory)
		if err != nil {
			return uploadFailedMsg(failText(err, "upload failed"))
		}
		return uploadDoneMsg(res)
	}
}

func progressTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

// deleteCmd deletes and then reconciles; the optimistic removal happens
// inside the collection and is only kept when the server accepted it.
func deleteCmd(c *files.Collection, rec files.Reconciler, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.Delete(context.Background(), id); err != nil {
			return errMsg(failText(err, "failed to delete file"))
		}
		if err := rec.Reconcile(context.Background()); err != nil {
			return errMsg(failText(err, "reconciliation failed"))
		}
		return reconciledMsg{}
	}
}

func downloadCmd(c *files.Collection, d files.Downloader, rec files.Reconciler, f api.FileRecord) tea.Cmd {
	return func() tea.Msg {
		path, err := c.Download(context.Background(), f, d)
		if err != nil {
			return errMsg(failText(err, "failed to download file"))
		}
		if err := rec.Reconcile(context.Background()); err != nil {
			return errMsg(failText(err, "reconciliation failed"))
		}
		return downloadDoneMsg(path)
	}
}

func createShareCmd(m *share.Manager, fileID int64, opt share.Options) tea.Cmd {
	return func() tea.Msg {
		link, err := m.Create(context.Background(), fileID, opt)
		if err != nil {
			return errMsg(failText(err, "failed to create share link"))
		}
		return shareCreatedMsg(link)
	}
}

func adminLoadCmd(v *admin.View) tea.Cmd {
	return func() tea.Msg {
		snap := v.LoadAll(context.Background())
		if snap.Failed() {
			return errMsg("failed to load admin data")
		}
		return adminMsg(snap)
	}
}

func updateQuotaCmd(v *admin.View, users []api.User, userID int64, megabytes float64) tea.Cmd {
	return func() tea.Msg {
		updated, err := v.UpdateQuota(context.Background(), users, userID, megabytes)
		if err != nil {
			return errMsg(failText(err, "failed to update quota"))
		}
		return usersMsg(updated)
	}
}

// failText distinguishes the failure classes users care about: no
// response at all, a server-supplied message, or a generic fallback.
func failText(err error, fallback string) string {
	if ae, ok := api.AsError(err); ok {
		if ae.Network() {
			return fallback + ": no response from server"
		}
		if ae.Message != "" {
			return fallback + ": " + ae.Message
		}
	}
	if err != nil && err.Error() != "" {
		return fallback + ": " + err.Error()
	}
	return fallback
}

func authErrText(err error, fallback string) string {
	if ae, ok := api.AsError(err); ok && ae.Auth() && ae.Message != "" {
		return ae.Message
	}
	return failText(err, fallback)
}
