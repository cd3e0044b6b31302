// Package ui implements the interactive file vault dashboard using
// Bubble Tea. All orchestration lives in the session, files, upload,
// share and admin packages; the UI turns key presses into their
// operations and renders whatever state they hold afterwards.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"filevault/internal/admin"
	"filevault/internal/api"
	"filevault/internal/files"
	"filevault/internal/session"
	"filevault/internal/share"
	"filevault/internal/upload"
	"filevault/internal/validate"
)

// state represents the current screen.
type state int

const (
	stateLogin state = iota
	stateRegister
	stateFiles
	stateFilters
	stateUpload
	stateShare
	stateConfirmDelete
	stateAdmin
	stateQuotaEdit
)

// Deps wires the orchestration layer into the UI.
type Deps struct {
	Session    *session.Store
	Collection *files.Collection
	Uploader   *upload.Orchestrator
	Shares     *share.Manager
	Admin      *admin.View
	Reconciler files.Reconciler
	Downloader files.Downloader
	Filters    *files.FilterState
	Addr       string
}

// Model holds all UI state for the dashboard.
type Model struct {
	deps Deps

	st     state
	err    string
	notice string

	sess *session.Session

	authBusy  bool
	loginMail textinput.Model
	loginPass textinput.Model
	regUser   textinput.Model
	regMail   textinput.Model
	regPass   textinput.Model

	fileLst list.Model
	search  textinput.Model

	fMime     textinput.Model
	fSizeMin  textinput.Model
	fSizeMax  textinput.Model
	fDateFrom textinput.Model
	fDateTo   textinput.Model
	fTags     textinput.Model
	fUploader textinput.Model
	fFocus    int

	upPaths    textinput.Model
	upDir      textinput.Model
	uploadBusy bool
	prog       progress.Model
	pct        float64
	upErrs     []string

	shareFile api.FileRecord
	shPass    textinput.Model
	shHours   textinput.Model
	shUsePass bool
	shUseExp  bool
	created   *api.ShareLink

	delTarget api.FileRecord

	snap     admin.Snapshot
	haveSnap bool
	userLst  list.Model
	quotaMB  textinput.Model
}

// New constructs the UI model and initializes inputs and lists. A
// restored session skips straight to the file view.
func New(deps Deps) Model {
	m := Model{deps: deps}

	m.loginMail = input("email", "Email: ")
	m.loginPass = password("password", "Password: ")
	m.regUser = input("username", "Username: ")
	m.regMail = input("email", "Email: ")
	m.regPass = password("password", "Password: ")

	m.fileLst = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.fileLst.Title = "My Files"
	m.fileLst.SetFilteringEnabled(false)
	m.search = input("search files...", "Search: ")

	m.fMime = input("image, video, text...", "Type: ")
	m.fSizeMin = input("KB", "Min size (KB): ")
	m.fSizeMax = input("KB", "Max size (KB): ")
	m.fDateFrom = input("2026-01-31", "From date: ")
	m.fDateTo = input("2026-12-31", "To date: ")
	m.fTags = input("comma,separated", "Tags: ")
	m.fUploader = input("username or email", "Uploader: ")

	m.upPaths = input("/path/a.txt /path/b.png", "Files: ")
	m.upDir = input("optional", "Directory: ")
	m.prog = progress.New(progress.WithDefaultGradient())

	m.shPass = password("share password", "Password: ")
	m.shHours = input("24", "Expires in (hours): ")

	m.userLst = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.userLst.Title = "Users"
	m.userLst.SetFilteringEnabled(false)
	m.quotaMB = input("quota in MB", "Quota (MB): ")

	if sess := deps.Session.Current(); sess != nil {
		m.sess = sess
		m.st = stateFiles
	} else {
		m.st = stateLogin
		m.loginMail.Focus()
	}
	return m
}

func input(placeholder, prompt string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = prompt
	return in
}

func password(placeholder, prompt string) textinput.Model {
	in := input(placeholder, prompt)
	in.EchoMode = textinput.EchoPassword
	return in
}

// Init loads the file list and fresh quota numbers when a persisted
// session was restored.
func (m Model) Init() tea.Cmd {
	if m.st == stateFiles {
		return tea.Batch(
			loadFilesCmd(m.deps.Collection, m.deps.Filters.Get()),
			refreshProfileCmd(m.deps.Session),
		)
	}
	return nil
}

// Update routes messages based on UI state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.fileLst.SetSize(msg.Width-4, msg.Height-12)
		m.userLst.SetSize(msg.Width-4, msg.Height-16)
		m.prog.Width = msg.Width - 8
		return m, nil

	case errMsg:
		m.err = string(msg)
		m.authBusy = false
		m.uploadBusy = false
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case authedMsg:
		m.sess = (*session.Session)(msg)
		m.authBusy = false
		m.err = ""
		m.notice = "Welcome, " + m.sess.User.Username
		m.st = stateFiles
		return m, loadFilesCmd(m.deps.Collection, m.deps.Filters.Get())

	case loggedOutMsg:
		m.sess = nil
		m.err = ""
		m.notice = "Logged out"
		m.st = stateLogin
		m.loginMail.SetValue("")
		m.loginPass.SetValue("")
		m.loginMail.Focus()
		return m, nil

	case filesMsg:
		m.setFileItems([]api.FileRecord(msg))
		m.err = ""
		return m, nil

	case reconciledMsg:
		m.sess = m.deps.Session.Current()
		m.setFileItems(m.deps.Collection.Records())
		return m, nil

	case progressTickMsg:
		if !m.uploadBusy {
			return m, nil
		}
		m.pct = m.deps.Uploader.Progress()
		return m, progressTickCmd()

	case uploadDoneMsg:
		m.uploadBusy = false
		m.pct = 1
		m.upErrs = msg.Errors
		m.sess = m.deps.Session.Current()
		m.setFileItems(m.deps.Collection.Records())
		if len(msg.Errors) == 0 {
			m.notice = fmt.Sprintf("Uploaded %d file(s)", len(msg.Uploaded))
		} else {
			m.notice = fmt.Sprintf("Uploaded %d file(s), %d rejected", len(msg.Uploaded), len(msg.Errors))
		}
		m.st = stateFiles
		return m, nil

	case uploadFailedMsg:
		m.uploadBusy = false
		m.pct = 0
		m.err = string(msg)
		return m, nil

	case downloadDoneMsg:
		m.notice = "Saved to " + string(msg)
		return m, nil

	case shareCreatedMsg:
		link := api.ShareLink(msg)
		m.created = &link
		m.err = ""
		return m, nil

	case adminMsg:
		m.snap = admin.Snapshot(msg)
		m.haveSnap = true
		m.setUserItems(m.snap.Users)
		m.err = ""
		return m, nil

	case usersMsg:
		m.snap.Users = []api.User(msg)
		m.setUserItems(m.snap.Users)
		m.notice = "Quota updated"
		m.st = stateAdmin
		return m, nil
	}

	switch m.st {
	case stateLogin:
		return m.updateLogin(msg)
	case stateRegister:
		return m.updateRegister(msg)
	case stateFiles:
		return m.updateFiles(msg)
	case stateFilters:
		return m.updateFilters(msg)
	case stateUpload:
		return m.updateUpload(msg)
	case stateShare:
		return m.updateShare(msg)
	case stateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case stateAdmin:
		return m.updateAdmin(msg)
	case stateQuotaEdit:
		return m.updateQuotaEdit(msg)
	default:
		return m, nil
	}
}

func (m *Model) setFileItems(records []api.FileRecord) {
	items := make([]list.Item, 0, len(records))
	for _, r := range records {
		items = append(items, fileItem(r))
	}
	m.fileLst.SetItems(items)
}

func (m *Model) setUserItems(users []api.User) {
	items := make([]list.Item, 0, len(users))
	for _, u := range users {
		items = append(items, userItem(u))
	}
	m.userLst.SetItems(items)
}

func (m *Model) selectedFile() (api.FileRecord, bool) {
	if it, ok := m.fileLst.SelectedItem().(fileItem); ok {
		return api.FileRecord(it), true
	}
	return api.FileRecord{}, false
}

func (m *Model) selectedUser() (api.User, bool) {
	if it, ok := m.userLst.SelectedItem().(userItem); ok {
		return api.User(it), true
	}
	return api.User{}, false
}

// currentFilters converts the filter inputs into the sparse wire form.
// Sizes are edited in KB and converted to bytes here, at the boundary.
func (m *Model) currentFilters() api.SearchFilters {
	f := api.SearchFilters{
		Name:     strings.TrimSpace(m.search.Value()),
		MimeType: strings.TrimSpace(m.fMime.Value()),
		DateFrom: strings.TrimSpace(m.fDateFrom.Value()),
		DateTo:   strings.TrimSpace(m.fDateTo.Value()),
		Tags:     strings.TrimSpace(m.fTags.Value()),
		Uploader: strings.TrimSpace(m.fUploader.Value()),
	}
	if kb, err := strconv.ParseInt(strings.TrimSpace(m.fSizeMin.Value()), 10, 64); err == nil && kb > 0 {
		f.SizeMin = kb * 1024
	}
	if kb, err := strconv.ParseInt(strings.TrimSpace(m.fSizeMax.Value()), 10, 64); err == nil && kb > 0 {
		f.SizeMax = kb * 1024
	}
	return f
}

// applyFilters publishes the active filter set and reloads the list.
func (m *Model) applyFilters() tea.Cmd {
	f := m.currentFilters()
	m.deps.Filters.Set(f)
	return loadFilesCmd(m.deps.Collection, f)
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.loginMail.Focused() {
				m.loginMail.Blur()
				m.loginPass.Focus()
			} else {
				m.loginPass.Blur()
				m.loginMail.Focus()
			}
			return m, nil
		case "ctrl+r":
			m.st = stateRegister
			m.err = ""
			m.regUser.Focus()
			return m, nil
		case "enter":
			if m.authBusy {
				return m, nil
			}
			mail := strings.TrimSpace(m.loginMail.Value())
			pass := m.loginPass.Value()
			if err := validate.Email(mail); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.authBusy = true
			m.err = ""
			return m, loginCmd(m.deps.Session, mail, pass)
		}
	}
	var cmd tea.Cmd
	if m.loginMail.Focused() {
		m.loginMail, cmd = m.loginMail.Update(msg)
	} else {
		m.loginPass, cmd = m.loginPass.Update(msg)
	}
	return m, cmd
}

func (m Model) updateRegister(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.st = stateLogin
			m.err = ""
			m.loginMail.Focus()
			return m, nil
		case "tab":
			switch {
			case m.regUser.Focused():
				m.regUser.Blur()
				m.regMail.Focus()
			case m.regMail.Focused():
				m.regMail.Blur()
				m.regPass.Focus()
			default:
				m.regPass.Blur()
				m.regUser.Focus()
			}
			return m, nil
		case "enter":
			if m.authBusy {
				return m, nil
			}
			user := strings.TrimSpace(m.regUser.Value())
			mail := strings.TrimSpace(m.regMail.Value())
			pass := m.regPass.Value()
			for _, err := range []error{validate.Username(user), validate.Email(mail), validate.Password(pass)} {
				if err != nil {
					m.err = err.Error()
					return m, nil
				}
			}
			m.authBusy = true
			m.err = ""
			return m, registerCmd(m.deps.Session, user, mail, pass)
		}
	}
	var cmd tea.Cmd
	switch {
	case m.regUser.Focused():
		m.regUser, cmd = m.regUser.Update(msg)
	case m.regMail.Focused():
		m.regMail, cmd = m.regMail.Update(msg)
	default:
		m.regPass, cmd = m.regPass.Update(msg)
	}
	return m, cmd
}

func (m Model) updateFiles(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		if m.search.Focused() {
			switch k.String() {
			case "enter":
				m.search.Blur()
				return m, m.applyFilters()
			case "esc":
				m.search.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}

		switch k.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.search.Focus()
			return m, nil
		case "r":
			return m, tea.Batch(
				loadFilesCmd(m.deps.Collection, m.deps.Filters.Get()),
				refreshProfileCmd(m.deps.Session),
			)
		case "f":
			m.st = stateFilters
			m.err = ""
			m.focusFilter(0)
			return m, nil
		case "u":
			if m.deps.Uploader.InFlight() {
				return m, nil
			}
			m.st = stateUpload
			m.err = ""
			m.upErrs = nil
			m.upPaths.SetValue("")
			m.upDir.SetValue("")
			m.upPaths.Focus()
			return m, nil
		case "d":
			f, ok := m.selectedFile()
			if !ok {
				return m, nil
			}
			m.notice = "Downloading " + f.OriginalName + "..."
			return m, downloadCmd(m.deps.Collection, m.deps.Downloader, m.deps.Reconciler, f)
		case "s":
			f, ok := m.selectedFile()
			if !ok {
				return m, nil
			}
			m.st = stateShare
			m.err = ""
			m.shareFile = f
			m.created = nil
			m.shUsePass = false
			m.shUseExp = true
			m.shPass.SetValue("")
			m.shHours.SetValue("24")
			m.shPass.Blur()
			m.shHours.Focus()
			return m, nil
		case "x":
			f, ok := m.selectedFile()
			if !ok {
				return m, nil
			}
			m.st = stateConfirmDelete
			m.err = ""
			m.delTarget = f
			return m, nil
		case "a":
			if m.sess == nil || !m.sess.User.Admin() {
				return m, nil
			}
			m.st = stateAdmin
			m.err = ""
			return m, adminLoadCmd(m.deps.Admin)
		case "ctrl+l":
			return m, logoutCmd(m.deps.Session)
		}
	}
	var cmd tea.Cmd
	m.fileLst, cmd = m.fileLst.Update(msg)
	return m, cmd
}

const filterFieldCount = 7

// focusFilter moves keyboard focus to the i'th filter input.
func (m *Model) focusFilter(i int) {
	m.fFocus = i
	m.fMime.Blur()
	m.fSizeMin.Blur()
	m.fSizeMax.Blur()
	m.fDateFrom.Blur()
	m.fDateTo.Blur()
	m.fTags.Blur()
	m.fUploader.Blur()
	switch i {
	case 0:
		m.fMime.Focus()
	case 1:
		m.fSizeMin.Focus()
	case 2:
		m.fSizeMax.Focus()
	case 3:
		m.fDateFrom.Focus()
	case 4:
		m.fDateTo.Focus()
	case 5:
		m.fTags.Focus()
	case 6:
		m.fUploader.Focus()
	}
}

func (m Model) updateFilters(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateFiles
			return m, nil
		case "tab":
			m.focusFilter((m.fFocus + 1) % filterFieldCount)
			return m, nil
		case "shift+tab":
			m.focusFilter((m.fFocus + filterFieldCount - 1) % filterFieldCount)
			return m, nil
		case "ctrl+x":
			m.fMime.SetValue("")
			m.fSizeMin.SetValue("")
			m.fSizeMax.SetValue("")
			m.fDateFrom.SetValue("")
			m.fDateTo.SetValue("")
			m.fTags.SetValue("")
			m.fUploader.SetValue("")
			return m, nil
		case "enter":
			m.st = stateFiles
			return m, m.applyFilters()
		}
	}
	var cmd tea.Cmd
	switch m.fFocus {
	case 0:
		m.fMime, cmd = m.fMime.Update(msg)
	case 1:
		m.fSizeMin, cmd = m.fSizeMin.Update(msg)
	case 2:
		m.fSizeMax, cmd = m.fSizeMax.Update(msg)
	case 3:
		m.fDateFrom, cmd = m.fDateFrom.Update(msg)
	case 4:
		m.fDateTo, cmd = m.fDateTo.Update(msg)
	case 5:
		m.fTags, cmd = m.fTags.Update(msg)
	case 6:
		m.fUploader, cmd = m.fUploader.Update(msg)
	}
	return m, cmd
}

func (m Model) updateUpload(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			if !m.uploadBusy {
				m.st = stateFiles
			}
			return m, nil
		case "tab":
			if m.upPaths.Focused() {
				m.upPaths.Blur()
				m.upDir.Focus()
			} else {
				m.upDir.Blur()
				m.upPaths.Focus()
			}
			return m, nil
		case "enter":
			if m.uploadBusy || m.deps.Uploader.InFlight() {
				return m, nil
			}
			paths := strings.Fields(m.upPaths.Value())
			if len(paths) == 0 {
				m.err = "enter at least one file path"
				return m, nil
			}
			m.uploadBusy = true
			m.err = ""
			m.pct = 0
			return m, tea.Batch(
				uploadCmd(m.deps.Uploader, paths, strings.TrimSpace(m.upDir.Value())),
				progressTickCmd(),
			)
		}
	}
	var cmd tea.Cmd
	if m.upPaths.Focused() {
		m.upPaths, cmd = m.upPaths.Update(msg)
	} else {
		m.upDir, cmd = m.upDir.Update(msg)
	}
	return m, cmd
}

func (m Model) updateShare(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			// Closing forgets the created link; reopening starts fresh.
			m.st = stateFiles
			m.created = nil
			return m, nil
		case "alt+p":
			m.shUsePass = !m.shUsePass
			if m.shUsePass {
				m.shHours.Blur()
				m.shPass.Focus()
			}
			return m, nil
		case "alt+e":
			m.shUseExp = !m.shUseExp
			return m, nil
		case "tab":
			if m.shPass.Focused() {
				m.shPass.Blur()
				m.shHours.Focus()
			} else {
				m.shHours.Blur()
				m.shPass.Focus()
			}
			return m, nil
		case "enter":
			if m.created != nil {
				m.st = stateFiles
				m.created = nil
				return m, nil
			}
			opt := m.shareOptions()
			if err := opt.Validate(); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.err = ""
			return m, createShareCmd(m.deps.Shares, m.shareFile.ID, opt)
		}
	}
	var cmd tea.Cmd
	if m.shPass.Focused() {
		m.shPass, cmd = m.shPass.Update(msg)
	} else {
		m.shHours, cmd = m.shHours.Update(msg)
	}
	return m, cmd
}

func (m *Model) shareOptions() share.Options {
	hours, _ := strconv.Atoi(strings.TrimSpace(m.shHours.Value()))
	return share.Options{
		UsePassword:    m.shUsePass,
		Password:       m.shPass.Value(),
		UseExpiry:      m.shUseExp,
		ExpiresInHours: hours,
	}
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "y":
			m.st = stateFiles
			return m, deleteCmd(m.deps.Collection, m.deps.Reconciler, m.delTarget.ID)
		case "n", "esc":
			m.st = stateFiles
			return m, nil
		}
	}
	return m, nil
}

func (m Model) updateAdmin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateFiles
			return m, nil
		case "r":
			return m, adminLoadCmd(m.deps.Admin)
		case "e":
			u, ok := m.selectedUser()
			if !ok {
				return m, nil
			}
			m.st = stateQuotaEdit
			m.err = ""
			m.quotaMB.SetValue(strconv.FormatInt(u.QuotaMax/(1024*1024), 10))
			m.quotaMB.Focus()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.userLst, cmd = m.userLst.Update(msg)
	return m, cmd
}

func (m Model) updateQuotaEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	u, ok := m.selectedUser()
	if !ok {
		m.st = stateAdmin
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.st = stateAdmin
			return m, nil
		case "enter":
			mb, err := strconv.ParseFloat(strings.TrimSpace(m.quotaMB.Value()), 64)
			if err != nil || mb <= 0 {
				m.err = "enter a positive number of megabytes"
				return m, nil
			}
			m.err = ""
			return m, updateQuotaCmd(m.deps.Admin, m.snap.Users, u.ID, mb)
		}
	}
	var cmd tea.Cmd
	m.quotaMB, cmd = m.quotaMB.Update(msg)
	return m, cmd
}
