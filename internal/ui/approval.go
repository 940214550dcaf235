package ui

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/extension"
	tea "github.com/charmbracelet/bubbletea"
)

// Decider answers wallet requests by id. Pending is the authoritative list;
// requests leave it when a page withdraws them or they expire.
type Decider interface {
	Approve(id uint64) error
	Reject(id uint64) error
	Pending() []extension.Request
}

// RefreshInterval is how often the approval model re-reads the pending list.
const RefreshInterval = time.Second

type requestMsg extension.Request

type refreshMsg struct{}

type decidedMsg struct {
	id       uint64
	approved bool
	err      error
}

// ApprovalModel is the wallet popup for `w3dapp serve`: it shows each
// connect or signature request as it arrives and lets the user approve
// with y or reject with n.
type ApprovalModel struct {
	requests <-chan extension.Request
	decider  Decider
	queue    []extension.Request
	log      []string
	quitting bool
}

// NewApprovalModel builds the model over an extension's request stream.
func NewApprovalModel(requests <-chan extension.Request, d Decider) ApprovalModel {
	return ApprovalModel{requests: requests, decider: d}
}

func (m ApprovalModel) waitForRequest() tea.Msg {
	r, ok := <-m.requests
	if !ok {
		return tea.Quit()
	}
	return requestMsg(r)
}

func refreshTick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m ApprovalModel) Init() tea.Cmd {
	return tea.Batch(m.waitForRequest, refreshTick())
}

func (m ApprovalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case requestMsg:
		// the stream only wakes us up; the queue mirrors the pending list
		m.queue = m.decider.Pending()
		return m, m.waitForRequest

	case refreshMsg:
		m.queue = m.decider.Pending()
		return m, refreshTick()

	case decidedMsg:
		verb := "approved"
		if !msg.approved {
			verb = "rejected"
		}
		line := fmt.Sprintf("#%d %s", msg.id, verb)
		if msg.err != nil {
			line = fmt.Sprintf("#%d %v", msg.id, msg.err)
		}
		m.log = append(m.log, line)
		m.queue = m.decider.Pending()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "y", "a", "enter":
			return m.decide(true)
		case "n", "r", "esc":
			return m.decide(false)
		}
	}
	return m, nil
}

func (m ApprovalModel) decide(approve bool) (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		return m, nil
	}
	r := m.queue[0]
	m.queue = m.queue[1:]
	d := m.decider
	return m, func() tea.Msg {
		var err error
		if approve {
			err = d.Approve(r.ID)
		} else {
			err = d.Reject(r.ID)
		}
		return decidedMsg{id: r.ID, approved: approve, err: err}
	}
}

// Pending reports how many requests wait for a decision.
func (m ApprovalModel) Pending() int {
	return len(m.queue)
}

func (m ApprovalModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n" + StyleTitle.Render("Wallet requests") + "\n")

	if len(m.queue) == 0 {
		sb.WriteString(Meta("  Waiting for the dApp…") + "\n")
	} else {
		sb.WriteString(KeyValueBlock("", describe(m.queue[0])) + "\n")
		if n := len(m.queue) - 1; n > 0 {
			sb.WriteString(Meta(fmt.Sprintf("  %d more queued", n)) + "\n")
		}
	}

	start := 0
	if len(m.log) > 5 {
		start = len(m.log) - 5
	}
	for _, l := range m.log[start:] {
		sb.WriteString(Meta("  "+l) + "\n")
	}

	sb.WriteString("\n" + StyleDim.Render("  y approve · n reject · q quit") + "\n")
	return sb.String()
}

// RequestBlock renders a request for prompts outside the approval model.
func RequestBlock(r extension.Request) string {
	return KeyValueBlock("Wallet request", describe(r))
}

func describe(r extension.Request) [][2]string {
	pairs := [][2]string{
		{"Request", fmt.Sprintf("#%d %s", r.ID, r.Kind)},
		{"Origin", r.Origin},
		{"Network", r.Network},
	}
	if r.Kind != extension.KindTransaction || r.Tx == nil {
		return pairs
	}

	pairs = append(pairs, [2]string{"From", r.From.Hex()})
	if r.Tx.To() != nil {
		pairs = append(pairs, [2]string{"To", r.Tx.To().Hex()})
	}
	data := r.Tx.Data()
	if len(data) >= 4 {
		pairs = append(pairs, [2]string{"Method", fmt.Sprintf("0x%x", data[:4])})
	}
	if len(data) == 4+32+32 {
		pairs = append(pairs,
			[2]string{"Recipient", TruncateAddr(fmt.Sprintf("0x%x", data[16:36]))},
			[2]string{"Amount (raw)", new(big.Int).SetBytes(data[36:68]).String()},
		)
	}
	pairs = append(pairs, [2]string{"Gas", fmt.Sprintf("%d", r.Tx.Gas())})
	return pairs
}
