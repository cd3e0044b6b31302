package ui

import (
	"fmt"
	"strings"

	"filevault/internal/api"
	"filevault/internal/format"
)

// View renders the current screen as a string.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString("File Vault")
	if m.deps.Addr != "" {
		b.WriteString(" (" + m.deps.Addr + ")")
	}
	b.WriteString("\n")
	if m.sess != nil {
		b.WriteString(m.quotaLine())
	}
	b.WriteString("\n")

	switch m.st {
	case stateLogin:
		b.WriteString("Sign in\n\n")
		b.WriteString(m.loginMail.View() + "\n")
		b.WriteString(m.loginPass.View() + "\n\n")
		if m.authBusy {
			b.WriteString("Signing in...\n")
		} else {
			b.WriteString("enter=sign in  tab=next field  ctrl+r=register  ctrl+c=quit\n")
		}

	case stateRegister:
		b.WriteString("Create account\n\n")
		b.WriteString(m.regUser.View() + "\n")
		b.WriteString(m.regMail.View() + "\n")
		b.WriteString(m.regPass.View() + "\n\n")
		if m.authBusy {
			b.WriteString("Creating account...\n")
		} else {
			b.WriteString("enter=create  tab=next field  esc=back\n")
		}

	case stateFiles:
		b.WriteString(m.search.View() + "\n")
		b.WriteString(m.fileLst.View())
		b.WriteString("\n")
		keys := "/=search f=filters u=upload d=download s=share x=delete r=refresh"
		if m.sess != nil && m.sess.User.Admin() {
			keys += " a=admin"
		}
		keys += " ctrl+l=logout q=quit"
		b.WriteString(keys + "\n")

	case stateFilters:
		b.WriteString("Advanced filters (AND semantics)\n\n")
		b.WriteString(m.fMime.View() + "\n")
		b.WriteString(m.fSizeMin.View() + "\n")
		b.WriteString(m.fSizeMax.View() + "\n")
		b.WriteString(m.fDateFrom.View() + "\n")
		b.WriteString(m.fDateTo.View() + "\n")
		b.WriteString(m.fTags.View() + "\n")
		b.WriteString(m.fUploader.View() + "\n\n")
		b.WriteString("enter=apply  tab=next field  ctrl+x=clear  esc=back\n")

	case stateUpload:
		b.WriteString("Upload files\n\n")
		b.WriteString(m.upPaths.View() + "\n")
		b.WriteString(m.upDir.View() + "\n\n")
		if m.uploadBusy {
			b.WriteString(m.prog.ViewAs(m.pct) + "\n\n")
			b.WriteString("Uploading... duplicate content is deduplicated server-side.\n")
		} else {
			b.WriteString("enter=upload  tab=next field  esc=back\n")
		}
		for _, e := range m.upErrs {
			b.WriteString("rejected: " + e + "\n")
		}

	case stateShare:
		b.WriteString("Share: " + m.shareFile.OriginalName + " (" + format.Size(m.shareFile.Size) + ")\n\n")
		if m.created == nil {
			b.WriteString(fmt.Sprintf("Password protect: %v (alt+p)\n", m.shUsePass))
			if m.shUsePass {
				b.WriteString(m.shPass.View() + "\n")
			}
			b.WriteString(fmt.Sprintf("Set expiration:   %v (alt+e)\n", m.shUseExp))
			if m.shUseExp {
				b.WriteString(m.shHours.View() + "\n")
			}
			b.WriteString("\nenter=create link  esc=cancel\n")
		} else {
			b.WriteString("Share link created!\n\n")
			b.WriteString("  " + m.deps.Shares.URL(m.created.Token) + "\n\n")
			if m.created.ExpiresAt != nil {
				b.WriteString("Expires: " + format.Date(*m.created.ExpiresAt) + "\n")
			}
			if m.shUsePass {
				b.WriteString("Password protected\n")
			}
			b.WriteString(fmt.Sprintf("Downloads: %d\n", m.created.Downloads))
			b.WriteString("\nenter/esc=done\n")
		}

	case stateConfirmDelete:
		b.WriteString(fmt.Sprintf("Delete %q? This cannot be undone.\n\n", m.delTarget.OriginalName))
		b.WriteString("y=delete  n=keep\n")

	case stateAdmin:
		b.WriteString("Admin dashboard\n\n")
		b.WriteString(m.statsBlock())
		b.WriteString(m.userLst.View())
		b.WriteString("\n")
		b.WriteString(m.auditBlock())
		b.WriteString("\ne=edit quota  r=refresh  esc=back\n")

	case stateQuotaEdit:
		if u, ok := m.selectedUser(); ok {
			b.WriteString("Edit quota for " + u.Username + "\n\n")
			b.WriteString("Current: " + format.Size(u.QuotaUsed) + " of " + format.Size(u.QuotaMax) + "\n")
		}
		b.WriteString(m.quotaMB.View() + "\n\n")
		b.WriteString("enter=save  esc=back\n")
	}

	if m.notice != "" {
		b.WriteString("\n" + m.notice + "\n")
	}
	if m.err != "" {
		b.WriteString("\nError: " + m.err + "\n")
	}
	return b.String()
}

// quotaLine renders the session header. The numbers come straight from
// the last profile fetch, never from summing local file sizes.
func (m Model) quotaLine() string {
	u := m.sess.User
	pct := format.Percent(u.QuotaUsed, u.QuotaMax)
	warn := ""
	switch {
	case pct > 90:
		warn = " [critical]"
	case pct > 75:
		warn = " [high]"
	}
	role := ""
	if u.Admin() {
		role = " (admin)"
	}
	return fmt.Sprintf("%s%s • %s of %s used (%.1f%%)%s • %s saved by dedup\n",
		u.Username, role,
		format.Size(u.QuotaUsed), format.Size(u.QuotaMax), pct, warn,
		format.Size(u.StorageSaved))
}

func (m Model) statsBlock() string {
	if !m.haveSnap {
		return "Loading...\n\n"
	}
	var b strings.Builder
	if m.snap.StatsErr != nil {
		b.WriteString("Stats unavailable: " + m.snap.StatsErr.Error() + "\n")
	} else {
		s := m.snap.Stats
		b.WriteString(fmt.Sprintf("Files: %d   Unique blocks: %d   Dedup ratio: %s\n",
			s.TotalFiles, s.UniqueBlocks, s.Efficiency))
		b.WriteString(fmt.Sprintf("Logical: %s   Physical: %s   Saved: %s\n",
			format.Size(s.LogicalSize), format.Size(s.PhysicalSize), format.Size(s.SpaceSaved)))
	}
	if m.snap.UsersErr != nil {
		b.WriteString("Users unavailable: " + m.snap.UsersErr.Error() + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) auditBlock() string {
	if !m.haveSnap {
		return ""
	}
	if m.snap.LogsErr != nil {
		return "Audit log unavailable: " + m.snap.LogsErr.Error() + "\n"
	}
	var b strings.Builder
	b.WriteString("Recent activity:\n")
	logs := m.snap.Logs
	if len(logs) > 8 {
		logs = logs[:8]
	}
	for _, l := range logs {
		b.WriteString(fmt.Sprintf("  %s  %s %s  %s\n",
			format.Date(l.CreatedAt), l.User.Username, l.Action, l.Details))
	}
	if len(logs) == 0 {
		b.WriteString("  (none)\n")
	}
	return b.String()
}

type fileItem api.FileRecord

func (f fileItem) Title() string {
	if f.IsDeduped {
		return f.OriginalName + "  [deduped]"
	}
	return f.OriginalName
}

func (f fileItem) Description() string {
	return fmt.Sprintf("%s • %s • %d downloads • %s",
		format.Size(f.Size), format.Date(f.CreatedAt), f.Downloads, f.ActualMimeType)
}

func (f fileItem) FilterValue() string { return f.OriginalName }

type userItem api.User

func (u userItem) Title() string {
	if api.User(u).Admin() {
		return u.Username + "  (admin)"
	}
	return u.Username
}

func (u userItem) Description() string {
	return fmt.Sprintf("%s of %s (%.1f%%) • %s saved",
		format.Size(u.QuotaUsed), format.Size(u.QuotaMax),
		format.Percent(u.QuotaUsed, u.QuotaMax), format.Size(u.StorageSaved))
}

func (u userItem) FilterValue() string { return u.Username }
