// =============================
// File: internal/console/model.go
// =============================
package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/service"
)

const opTimeout = 5 * time.Minute

// ConfigSource отдаёт текущую конфигурацию протокола.
type ConfigSource interface {
	GetProtocolConfig(ctx context.Context) (domain.ProtocolConfig, error)
}

// Runner запускает цикл распределения и сохраняет его итог.
type Runner interface {
	Run(ctx context.Context, trigger string) (*domain.DistributionRecord, error)
}

// Model - консоль оператора: состояние кошелька, число холдеров по тирам,
// ручной сбор комиссий и запуск распределения.
type Model struct {
	ctx     context.Context
	chain   service.ChainClient
	configs ConfigSource
	runner  Runner
	keys    KeyMap
	spinner spinner.Model

	busy   string
	status *statusMsg
	claim  *claimMsg
	last   *distributionMsg
	width  int
}

func New(ctx context.Context, chain service.ChainClient, configs ConfigSource, runner Runner) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(gold)

	return Model{
		ctx:     ctx,
		chain:   chain,
		configs: configs,
		runner:  runner,
		keys:    DefaultKeyMap(),
		spinner: sp,
		busy:    "Loading status",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case m.busy != "":
			// одна операция за раз
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.busy = "Loading status"
			return m, tea.Batch(m.spinner.Tick, m.refresh())
		case key.Matches(msg, m.keys.Claim):
			m.busy = "Claiming creator fees"
			return m, tea.Batch(m.spinner.Tick, m.claimFees())
		case key.Matches(msg, m.keys.Distribute):
			m.busy = "Running distribution cycle"
			return m, tea.Batch(m.spinner.Tick, m.distribute())
		}
		return m, nil

	case statusMsg:
		m.busy = ""
		m.status = &msg
		return m, nil

	case claimMsg:
		m.busy = ""
		m.claim = &msg
		return m, nil

	case distributionMsg:
		m.busy = ""
		m.last = &msg
		return m, m.refresh()

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, opTimeout)
		defer cancel()

		out := statusMsg{Status: m.chain.Status(ctx)}
		if !out.Status.Ready {
			return out
		}
		cfg, err := m.configs.GetProtocolConfig(ctx)
		if err != nil {
			out.TierErr = err
			return out
		}
		tiers, err := m.chain.HoldersByTier(ctx, cfg)
		if err != nil {
			out.TierErr = err
			return out
		}
		out.Major, out.Medium = len(tiers.Major), len(tiers.Medium)
		return out
	}
}

func (m Model) claimFees() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, opTimeout)
		defer cancel()
		res, err := m.chain.ClaimFees(ctx)
		return claimMsg{Result: res, Err: err}
	}
}

func (m Model) distribute() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, opTimeout)
		defer cancel()
		rec, err := m.runner.Run(ctx, service.TriggerManual)
		return distributionMsg{Record: rec, Err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("JinVault · creator fee distributor"))
	b.WriteString("\n")

	b.WriteString(m.statusView())

	if m.claim != nil {
		b.WriteString(m.claimView())
	}
	if m.last != nil {
		b.WriteString(m.distributionView())
	}

	if m.busy != "" {
		b.WriteString(fmt.Sprintf("%s %s...\n", m.spinner.View(), m.busy))
	}

	help := make([]string, 0, len(m.keys.ShortHelp()))
	for _, k := range m.keys.ShortHelp() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func (m Model) statusView() string {
	if m.status == nil {
		return ""
	}
	st := m.status.Status

	var b strings.Builder
	if st.Ready {
		b.WriteString(row("Status", successStyle.Render("ready")))
	} else {
		b.WriteString(row("Status", errorStyle.Render("not ready")))
	}
	if st.WalletAddress != "" {
		b.WriteString(row("Wallet", st.WalletAddress))
		b.WriteString(row("SOL balance", st.SOLBalance.StringFixed(4)))
	}
	if st.Error != "" {
		b.WriteString(row("Error", errorStyle.Render(st.Error)))
	}
	if st.Ready {
		if m.status.TierErr != nil {
			b.WriteString(row("Holders", errorStyle.Render(m.status.TierErr.Error())))
		} else {
			b.WriteString(row("Major holders", fmt.Sprintf("%d", m.status.Major)))
			b.WriteString(row("Medium holders", fmt.Sprintf("%d", m.status.Medium)))
		}
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m Model) claimView() string {
	var b strings.Builder
	switch {
	case m.claim.Err != nil:
		b.WriteString(row("Claim", errorStyle.Render(m.claim.Err.Error())))
	case !m.claim.Result.Claimed():
		b.WriteString(row("Claim", m.claim.Result.Message))
	default:
		b.WriteString(row("Claimed", successStyle.Render(m.claim.Result.Amount.String()+" SOL")))
		b.WriteString(row("Source", string(m.claim.Result.Source)))
		b.WriteString(row("Signature", sigStyle.Render(m.claim.Result.Signature.String())))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m Model) distributionView() string {
	var b strings.Builder
	if m.last.Err != nil {
		b.WriteString(row("Distribution", errorStyle.Render(m.last.Err.Error())))
		return panelStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
	}

	res := m.last.Record.Result
	if res.Success {
		b.WriteString(row("Distribution", successStyle.Render("success")))
	} else {
		b.WriteString(row("Distribution", errorStyle.Render("failed")))
	}
	b.WriteString(row("ID", m.last.Record.ID))
	b.WriteString(row("Fees claimed", res.TotalFeesClaimed.String()+" SOL"))
	b.WriteString(row("GOLD purchased", res.GoldPurchased.String()))
	b.WriteString(row("GOLD distributed", res.GoldDistributed.String()))
	b.WriteString(row("Token buyback", res.TokenBuyback.String()))
	b.WriteString(row("Holders (maj/med)", fmt.Sprintf("%d / %d", res.MajorHolders, res.MediumHolders)))
	if res.Error != "" {
		b.WriteString(row("Error", errorStyle.Render(res.Error)))
	}
	for i, sig := range res.TxSignatures {
		b.WriteString(row(fmt.Sprintf("Tx %d", i+1), sigStyle.Render(sig)))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}
