package syllabus

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rahulm/quizforge/internal/ingest"
	qz "github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/quizgen"
	"github.com/rahulm/quizforge/internal/router"
	"github.com/rahulm/quizforge/internal/screen"
	quizscreen "github.com/rahulm/quizforge/internal/screens/quiz"
	sess "github.com/rahulm/quizforge/internal/session"
	"github.com/rahulm/quizforge/internal/store"
	syl "github.com/rahulm/quizforge/internal/syllabus"
	"github.com/rahulm/quizforge/internal/ui/components"
	"github.com/rahulm/quizforge/internal/ui/layout"
	"github.com/rahulm/quizforge/internal/ui/theme"
)

type state int

const (
	stateList state = iota
	stateAdding
	stateParsing
	stateRenaming
	stateConfirmDelete
	stateBrowsing
	stateClassifying
)

type presetsLoadedMsg struct {
	Presets []syl.Preset
	Err     error
}

type presetChangedMsg struct {
	Err error
}

type presetParsedMsg struct {
	Preset *syl.Preset
	Err    error
}

// scopeRow is one practice scope inside a preset: all questions, a
// book, one of its topics, or the unclassified rest.
type scopeRow struct {
	Label     string
	Indent    int
	Key       sess.Key
	Questions []qz.Question
}

type browseBuiltMsg struct {
	Rows []scopeRow
	Err  error
}

type classifyDoneMsg struct {
	Applied int
	Err     error
}

// SyllabusScreen manages syllabus presets and starts scope-filtered
// practice sessions.
type SyllabusScreen struct {
	st  *store.Store
	gen *quizgen.Service

	state   state
	presets []syl.Preset
	cursor  int

	input  components.TextInput
	notice string
	errMsg string

	// Browse state for the selected preset.
	browsing *syl.Preset
	rows     []scopeRow
	rowPick  int
}

var _ screen.Screen = (*SyllabusScreen)(nil)
var _ screen.KeyHintProvider = (*SyllabusScreen)(nil)
var _ screen.EscCapturer = (*SyllabusScreen)(nil)

// New creates a new SyllabusScreen. gen may be nil; parsing and LLM
// classification are then unavailable.
func New(st *store.Store, gen *quizgen.Service) *SyllabusScreen {
	return &SyllabusScreen{st: st, gen: gen}
}

func (s *SyllabusScreen) Init() tea.Cmd {
	return s.load()
}

func (s *SyllabusScreen) Title() string {
	if s.browsing != nil {
		return "Syllabus: " + s.browsing.Name
	}
	return "Syllabus"
}

func (s *SyllabusScreen) CapturesEsc() bool {
	return s.state != stateList
}

func (s *SyllabusScreen) KeyHints() []layout.KeyHint {
	switch s.state {
	case stateAdding, stateRenaming:
		return []layout.KeyHint{
			{Key: "Enter", Description: "OK"},
			{Key: "Esc", Description: "Cancel"},
		}
	case stateConfirmDelete:
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Keep"},
		}
	case stateBrowsing:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Practice"},
			{Key: "V", Description: "Review"},
			{Key: "C", Description: "Auto-classify"},
			{Key: "Esc", Description: "Back"},
		}
	case stateParsing, stateClassifying:
		return []layout.KeyHint{}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Browse"},
		{Key: "A", Description: "Add from file"},
		{Key: "R", Description: "Rename"},
		{Key: "D", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SyllabusScreen) load() tea.Cmd {
	return func() tea.Msg {
		presets, err := s.st.SyllabusPresets(context.Background())
		return presetsLoadedMsg{Presets: presets, Err: err}
	}
}

func (s *SyllabusScreen) selected() *syl.Preset {
	if s.cursor < 0 || s.cursor >= len(s.presets) {
		return nil
	}
	return &s.presets[s.cursor]
}

// parseFromFile extracts text from the given file and asks the LLM to
// shape it into a preset.
func (s *SyllabusScreen) parseFromFile(path string) tea.Cmd {
	return func() tea.Msg {
		text, err := ingest.ExtractFile(path)
		if err != nil {
			return presetParsedMsg{Err: err}
		}
		preset, err := s.gen.ParseSyllabus(context.Background(), text)
		if err != nil {
			return presetParsedMsg{Err: err}
		}
		if err := s.st.AddSyllabusPreset(context.Background(), *preset); err != nil {
			return presetParsedMsg{Err: err}
		}
		return presetParsedMsg{Preset: preset}
	}
}

// buildBrowse classifies every stored question against the preset and
// groups the results into practice scopes.
func (s *SyllabusScreen) buildBrowse(preset syl.Preset) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		banks, err := s.st.History(ctx)
		if err != nil {
			return browseBuiltMsg{Err: err}
		}
		metas, err := s.st.MetaMap(ctx)
		if err != nil {
			return browseBuiltMsg{Err: err}
		}

		ix := syl.BuildIndex(&preset)

		var all []qz.Question
		byBook := make(map[string][]qz.Question)
		byTopic := make(map[string][]qz.Question)
		var unmatched []qz.Question

		for _, bank := range banks {
			for _, q := range bank.Questions {
				q := q
				all = append(all, q)
				var meta *qz.QuestionMeta
				if m, ok := metas[q.ID]; ok {
					meta = &m
				}
				a := syl.Classify(&q, ix, meta, bank.Title)
				if a == nil {
					unmatched = append(unmatched, q)
					continue
				}
				byBook[a.BookID] = append(byBook[a.BookID], q)
				if a.TopicID != "" && a.TopicID != syl.TopicOther {
					byTopic[a.TopicID] = append(byTopic[a.TopicID], q)
				}
			}
		}

		var rows []scopeRow
		rows = append(rows, scopeRow{
			Label:     fmt.Sprintf("All questions (%d)", len(all)),
			Key:       sess.SyllabusAllKey(preset.ID),
			Questions: all,
		})
		for _, book := range preset.Books {
			rows = append(rows, scopeRow{
				Label:     fmt.Sprintf("%s (%d)", book.Title, len(byBook[book.ID])),
				Indent:    1,
				Key:       sess.SyllabusBookKey(preset.ID, book.ID),
				Questions: byBook[book.ID],
			})
			rows = appendTopicRows(rows, preset.ID, book.ID, book.Topics, 2, byTopic)
		}
		rows = append(rows, scopeRow{
			Label:     fmt.Sprintf("Unclassified (%d)", len(unmatched)),
			Key:       sess.UnmatchedKey(preset.ID),
			Questions: unmatched,
		})

		return browseBuiltMsg{Rows: rows}
	}
}

func appendTopicRows(rows []scopeRow, presetID, bookID string, topics []syl.Topic, indent int, byTopic map[string][]qz.Question) []scopeRow {
	for _, t := range topics {
		rows = append(rows, scopeRow{
			Label:     fmt.Sprintf("%s (%d)", t.Title, len(byTopic[t.ID])),
			Indent:    indent,
			Key:       sess.SyllabusTopicKey(presetID, bookID, t.ID),
			Questions: byTopic[t.ID],
		})
		rows = appendTopicRows(rows, presetID, bookID, t.Topics, indent+1, byTopic)
	}
	return rows
}

// classifyUnmatched sends the unclassified questions to the LLM and
// stores the returned placements as per-question overrides.
func (s *SyllabusScreen) classifyUnmatched(preset syl.Preset) tea.Cmd {
	var pending []qz.Question
	for _, r := range s.rows {
		if r.Key.Kind == sess.KindUnmatched {
			pending = r.Questions
		}
	}
	return func() tea.Msg {
		if len(pending) == 0 {
			return classifyDoneMsg{}
		}
		ctx := context.Background()
		mappings, err := s.gen.ClassifyQuestions(ctx, &preset, pending)
		if err != nil {
			return classifyDoneMsg{Err: err}
		}

		ix := syl.BuildIndex(&preset)
		applied, err := syl.ApplyMappings(ctx, s.st, ix, mappings)
		if err != nil {
			return classifyDoneMsg{Applied: applied, Err: err}
		}
		return classifyDoneMsg{Applied: applied}
	}
}

func (s *SyllabusScreen) startSession(mode sess.Mode) tea.Cmd {
	if s.rowPick < 0 || s.rowPick >= len(s.rows) {
		return nil
	}
	row := s.rows[s.rowPick]
	if len(row.Questions) == 0 {
		s.notice = "No questions in this scope"
		return nil
	}
	label := s.browsing.Name
	sc := quizscreen.New(s.st, row.Key, row.Questions, mode, label)
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *SyllabusScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case presetsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.presets = msg.Presets
		if s.cursor >= len(s.presets) {
			s.cursor = len(s.presets) - 1
		}
		if s.cursor < 0 {
			s.cursor = 0
		}
		return s, nil

	case presetChangedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, s.load()

	case presetParsedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.state = stateList
			return s, nil
		}
		s.notice = fmt.Sprintf("Added %q with %d books", msg.Preset.Name, len(msg.Preset.Books))
		s.state = stateList
		return s, s.load()

	case browseBuiltMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.state = stateList
			s.browsing = nil
			return s, nil
		}
		s.rows = msg.Rows
		if s.rowPick >= len(s.rows) {
			s.rowPick = 0
		}
		s.state = stateBrowsing
		return s, nil

	case classifyDoneMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.state = stateBrowsing
			return s, nil
		}
		s.notice = fmt.Sprintf("Classified %d questions", msg.Applied)
		// Rebuild the scope counts with the new overrides in place.
		return s, s.buildBrowse(*s.browsing)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.state == stateAdding || s.state == stateRenaming {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SyllabusScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.state {
	case stateParsing, stateClassifying:
		return s, nil

	case stateAdding:
		switch key {
		case "esc":
			s.state = stateList
			return s, nil
		case "enter":
			path := strings.TrimSpace(s.input.Value())
			if path == "" {
				return s, nil
			}
			s.state = stateParsing
			return s, s.parseFromFile(path)
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case stateRenaming:
		switch key {
		case "esc":
			s.state = stateList
			return s, nil
		case "enter":
			name := strings.TrimSpace(s.input.Value())
			p := s.selected()
			s.state = stateList
			if name == "" || p == nil {
				return s, nil
			}
			id := p.ID
			return s, func() tea.Msg {
				return presetChangedMsg{Err: s.st.RenameSyllabusPreset(context.Background(), id, name)}
			}
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case stateConfirmDelete:
		switch key {
		case "y":
			p := s.selected()
			s.state = stateList
			if p == nil {
				return s, nil
			}
			id := p.ID
			return s, func() tea.Msg {
				return presetChangedMsg{Err: s.st.DeleteSyllabusPreset(context.Background(), id)}
			}
		case "n", "esc":
			s.state = stateList
		}
		return s, nil

	case stateBrowsing:
		switch key {
		case "esc":
			s.state = stateList
			s.browsing = nil
			s.rows = nil
			return s, nil
		case "up", "k":
			if s.rowPick > 0 {
				s.rowPick--
			}
		case "down", "j":
			if s.rowPick < len(s.rows)-1 {
				s.rowPick++
			}
		case "enter":
			return s, s.startSession(sess.ModePractice)
		case "v":
			return s, s.startSession(sess.ModeReview)
		case "c":
			if s.gen == nil {
				s.notice = "LLM classification needs a configured endpoint"
				return s, nil
			}
			s.state = stateClassifying
			return s, s.classifyUnmatched(*s.browsing)
		}
		return s, nil
	}

	s.notice = ""
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.presets)-1 {
			s.cursor++
		}
	case "enter":
		if p := s.selected(); p != nil {
			s.browsing = p
			s.rowPick = 0
			return s, s.buildBrowse(*p)
		}
	case "a":
		if s.gen == nil {
			s.notice = "Parsing a syllabus needs a configured endpoint"
			return s, nil
		}
		s.input = components.NewTextInput("Path to outline file", false, 200)
		s.state = stateAdding
		return s, s.input.Init()
	case "r":
		if p := s.selected(); p != nil {
			s.input = components.NewTextInput("New name", false, 80)
			s.input.Model.SetValue(p.Name)
			s.state = stateRenaming
			return s, s.input.Init()
		}
	case "d":
		if s.selected() != nil {
			s.state = stateConfirmDelete
		}
	}
	return s, nil
}

func (s *SyllabusScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(s.errMsg))
	}

	switch s.state {
	case stateParsing:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Parsing outline..."))
	case stateClassifying:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Classifying questions..."))
	case stateBrowsing:
		return s.renderBrowse(width)
	}

	var b strings.Builder

	if len(s.presets) == 0 {
		b.WriteString(theme.Hint.Render("No syllabus presets yet. Press A to parse one from a file."))
		b.WriteString("\n")
	}

	for i, p := range s.presets {
		line := fmt.Sprintf("%s  (%d books)", p.Name, len(p.Books))
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("  ▸ " + line))
		} else {
			b.WriteString(theme.Unselected.Render("    " + line))
		}
		b.WriteString("\n")
	}

	switch s.state {
	case stateAdding:
		b.WriteString("\n  Outline file: " + s.input.View())
	case stateRenaming:
		b.WriteString("\n  Rename: " + s.input.View())
	case stateConfirmDelete:
		if p := s.selected(); p != nil {
			b.WriteString("\n" + theme.Incorrect.Render(fmt.Sprintf("  Delete %q? (y/n)", p.Name)))
		}
	}

	if s.notice != "" {
		b.WriteString("\n" + theme.Hint.Render("  "+s.notice))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(width).Render(b.String())
}

func (s *SyllabusScreen) renderBrowse(width int) string {
	var b strings.Builder

	for i, row := range s.rows {
		pad := strings.Repeat("  ", row.Indent)
		if i == s.rowPick {
			b.WriteString(theme.Selected.Render("  ▸ " + pad + row.Label))
		} else {
			b.WriteString(theme.Unselected.Render("    " + pad + row.Label))
		}
		b.WriteString("\n")
	}

	if s.notice != "" {
		b.WriteString("\n" + theme.Hint.Render("  "+s.notice))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(width).Render(b.String())
}
