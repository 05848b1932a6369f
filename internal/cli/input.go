// Package cli handles cmd line input for querying the dataset interactively, for DBG and testing
package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/effserve/internal/utils"
	"github.com/bastiangx/effserve/pkg/search"
	"github.com/bastiangx/effserve/pkg/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	techStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const help = `commands:
  <keyword>     best efficiency record
  :h <keyword>  history
  :a <query>    autocomplete
  :s            suggestions
  :r <path>     reload dataset
  :q            quit`

// Querier is what the CLI needs from the service
type Querier interface {
	Search(keyword string) (service.SearchResponse, error)
	History(keyword string) []search.Point
	Autocomplete(query string) []string
	Suggestions() []string
	ReloadFile(path string) (service.ReloadResult, error)
}

// InputHandler reads commands line by line and prints the answers.
type InputHandler struct {
	backend      Querier
	maxLen       int
	requestCount int
	in           io.Reader
	out          *log.Logger
}

// NewInputHandler handles initialization of the InputHandler on stdin/stderr
func NewInputHandler(backend Querier, maxLen int) *InputHandler {
	return NewInputHandlerWithIO(backend, maxLen, os.Stdin, os.Stderr)
}

// NewInputHandlerWithIO creates a handler on arbitrary streams
func NewInputHandlerWithIO(backend Querier, maxLen int, r io.Reader, w io.Writer) *InputHandler {
	return &InputHandler{
		backend: backend,
		maxLen:  maxLen,
		in:      r,
		out:     log.NewWithOptions(w, log.Options{Level: log.GetLevel()}),
	}
}

// Start begins the interface loop.
// It returns nil at end of input or on :q.
func (h *InputHandler) Start() error {
	h.out.Print("EffServe CLI")
	h.out.Print("type a technology and press Enter (:? for commands, Ctrl+C to exit):")

	reader := bufio.NewReader(h.in)
	for {
		h.out.Print("> ")
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			if line == ":q" {
				return nil
			}
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleInput dispatches one line to the right operation.
func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	cmd, arg := line, ""
	if strings.HasPrefix(line, ":") {
		cmd, arg, _ = strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
	}

	if utils.RuneLen(arg) > h.maxLen || (!strings.HasPrefix(cmd, ":") && utils.RuneLen(cmd) > h.maxLen) {
		h.out.Errorf("Input too long (max %d characters)", h.maxLen)
		return
	}

	start := time.Now()
	switch cmd {
	case ":h":
		h.history(arg)
	case ":a":
		h.autocomplete(arg)
	case ":s":
		h.printList("Suggestions", h.backend.Suggestions())
	case ":r":
		h.reload(arg)
	case ":?":
		h.out.Print(help)
		return
	default:
		if strings.HasPrefix(cmd, ":") {
			h.out.Errorf("Unknown command %s, :? lists commands", cmd)
			return
		}
		h.search(line)
	}
	h.out.Debugf("Took [ %v ] for %q", time.Since(start), line)
}

func (h *InputHandler) search(keyword string) {
	resp, err := h.backend.Search(keyword)
	if err != nil {
		h.out.Errorf("Search failed: %v", err)
		return
	}
	if !resp.Found {
		h.out.Warnf("%s", resp.Message)
		return
	}
	d := resp.Data
	h.out.Printf("%s (%s)", techStyle.Render(d.Technology), d.Category)
	h.out.Printf("  efficiency: %s", d.Efficiency)
	h.out.Printf("  date:       %s", d.UpdateDate)
	h.out.Printf("  laboratory: %s", d.Laboratory)
}

func (h *InputHandler) history(keyword string) {
	if keyword == "" {
		h.out.Error("Usage: :h <keyword>")
		return
	}
	points := h.backend.History(keyword)
	if len(points) == 0 {
		h.out.Warnf("No history for '%s'", keyword)
		return
	}
	h.out.Printf("History for '%s' (%d points):", keyword, len(points))
	for _, p := range points {
		h.out.Printf("  %s  %6.2f%%  %s", p.Date, p.Efficiency, dimStyle.Render(p.Lab))
	}
}

func (h *InputHandler) autocomplete(query string) {
	items := h.backend.Autocomplete(query)
	if len(items) == 0 {
		h.out.Warnf("No completions for '%s'", query)
		return
	}
	h.printList("Completions", items)
}

func (h *InputHandler) reload(path string) {
	if path == "" {
		h.out.Error("Usage: :r <path>")
		return
	}
	res, err := h.backend.ReloadFile(path)
	if err != nil {
		h.out.Errorf("Reload failed: %v", err)
		return
	}
	h.out.Printf("Loaded %d records from %s", res.TotalRecords, path)
}

func (h *InputHandler) printList(title string, items []string) {
	h.out.Printf("%s (%d):", title, len(items))
	for i, s := range items {
		h.out.Printf("%2d. %s", i+1, techStyle.Render(s))
	}
}
