package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/gateway"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/speech"
)

var (
	interviewRole      string
	interviewDomain    string
	interviewType      string
	interviewQuestions int
	interviewVoice     bool
	interviewSpeak     bool
	piperEndpoint      string
	piperVoice         string
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interactive practice interview",
	Long: `Run a practice interview in the terminal. Questions are generated for the
target role; answers can be typed or, with --voice, spoken into the
microphone. Each answer is scored, and a final report is produced at the end.`,
	RunE: runInterview,
}

func init() {
	interviewCmd.Flags().StringVar(&interviewRole, "role", "", "Target job role (prompted for when omitted)")
	interviewCmd.Flags().StringVar(&interviewDomain, "domain", "", "Optional domain focus, e.g. Backend")
	interviewCmd.Flags().StringVar(&interviewType, "type", "behavioral", "Interview type: technical or behavioral")
	interviewCmd.Flags().IntVar(&interviewQuestions, "questions", 5, fmt.Sprintf("Number of questions (%d-%d)", config.MinQuestions, config.MaxQuestions))
	interviewCmd.Flags().BoolVar(&interviewVoice, "voice", false, "Enable spoken answers via the microphone")
	interviewCmd.Flags().BoolVar(&interviewSpeak, "speak", false, "Read each question aloud")
	interviewCmd.Flags().StringVar(&piperEndpoint, "piper-endpoint", speech.DefaultPiperEndpoint, "Piper TTS server address")
	interviewCmd.Flags().StringVar(&piperVoice, "piper-voice", speech.DefaultPiperVoice, "Piper voice model")
	rootCmd.AddCommand(interviewCmd)
}

func runInterview(_ *cobra.Command, _ []string) error {
	// Missing credential is fatal: the interactive flow is never entered.
	apiKey, err := config.LoadAPIKey()
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	ui := &interviewUI{
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		printer: observability.NewPrinter(os.Stdout),
		session: session.New(gateway.New(client)),
		speaker: speech.NoopSpeaker{},
	}

	if interviewVoice || interviewSpeak {
		if err := speech.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Audio unavailable: %v\n", err)
		} else {
			defer speech.Terminate()
			ui.setupAudio(ctx)
		}
	}
	defer func() { _ = ui.speaker.Close() }()

	return ui.run(ctx)
}

// interviewUI drives one session through the terminal. It holds only a handle
// to the session; all interview state lives in the session itself.
type interviewUI struct {
	in          *bufio.Reader
	out         io.Writer
	printer     *observability.Printer
	session     *session.Session
	transcriber speech.Transcriber
	speaker     speech.Speaker
}

// setupAudio wires the microphone and speech output. Both are optional;
// failures are reported once and the corresponding feature is disabled.
func (ui *interviewUI) setupAudio(ctx context.Context) {
	if interviewVoice {
		recognizer, err := speech.NewRecognizer(ctx, func(msg string) {
			fmt.Fprintf(ui.out, "⚠ %s\n", msg)
		})
		if err != nil {
			fmt.Fprintf(ui.out, "⚠ Voice answers unavailable: %v\n", err)
		} else {
			ui.transcriber = recognizer
		}
	}

	if interviewSpeak {
		speaker, err := speech.NewPiperSpeaker(piperEndpoint, piperVoice)
		if err != nil {
			fmt.Fprintf(ui.out, "⚠ Speech output unavailable: %v\n", err)
		} else {
			ui.speaker = speaker
		}
	}
}

func (ui *interviewUI) run(ctx context.Context) error {
	fmt.Fprintln(ui.out, "🤖 AI Interview Coach")

	for {
		cfg, err := ui.collectConfig()
		if err != nil {
			return err
		}

		fmt.Fprintln(ui.out, "Generating interview questions...")
		if err := ui.session.Start(ctx, cfg); err != nil {
			var genErr *session.GenerationError
			if errors.As(err, &genErr) {
				fmt.Fprintf(ui.out, "Failed to generate questions: %s\n", genErr.Message)
				return errors.New("failed to generate questions, check your API key and try again")
			}
			return err
		}

		if err := ui.askQuestions(ctx); err != nil {
			return err
		}
		ui.printSummary()
		if err := ui.reportPhase(ctx); err != nil {
			return err
		}

		if !ui.confirm("Start a new interview?") {
			return nil
		}
		ui.session.Reset()
	}
}

// collectConfig merges flags with interactive prompts into a validated
// InterviewConfig. The config is immutable once the interview starts.
func (ui *interviewUI) collectConfig() (config.InterviewConfig, error) {
	role := interviewRole
	if role == "" {
		role = ui.prompt("🎯 Target Job Role", "Software Engineer")
	}

	domain := interviewDomain

	var itype config.InterviewType
	switch strings.ToLower(interviewType) {
	case "technical":
		itype = config.TypeTechnical
	case "behavioral":
		itype = config.TypeBehavioral
	default:
		return config.InterviewConfig{}, fmt.Errorf("unknown interview type %q (want technical or behavioral)", interviewType)
	}

	cfg := config.InterviewConfig{
		JobRole:       role,
		Domain:        domain,
		InterviewType: itype,
		QuestionCount: interviewQuestions,
	}
	if err := cfg.Validate(); err != nil {
		return config.InterviewConfig{}, fmt.Errorf("invalid interview configuration: %w", err)
	}
	return cfg, nil
}

// askQuestions loops until the session reaches Summary.
func (ui *interviewUI) askQuestions(ctx context.Context) error {
	for ui.session.Phase() == session.PhaseInProgress {
		question, ok := ui.session.CurrentQuestion()
		if !ok {
			break
		}
		current, total := ui.session.Progress()
		fmt.Fprintln(ui.out)
		ui.printer.PrintQuestion(current, total, question)
		ui.speaker.Speak(ctx, question)

		if err := ui.obtainAnswer(ctx); err != nil {
			return err
		}
	}
	return nil
}

// obtainAnswer collects one answer action: typed text, /voice, or /skip.
// Rejected (empty) answers re-prompt without advancing.
func (ui *interviewUI) obtainAnswer(ctx context.Context) error {
	for {
		if ui.transcriber != nil {
			fmt.Fprintln(ui.out, "Type your answer, or /voice to speak it, or /skip:")
		} else {
			fmt.Fprintln(ui.out, "Type your answer, or /skip:")
		}

		line, err := ui.readLine()
		if err != nil {
			return err
		}

		switch strings.TrimSpace(line) {
		case "/skip":
			return ui.session.Skip(ctx)
		case "/voice":
			if ui.transcriber == nil {
				fmt.Fprintln(ui.out, "⚠ Voice answers are not enabled; run with --voice.")
				continue
			}
			fmt.Fprintln(ui.out, "🎙 Listening... speak now!")
			text := ui.transcriber.CaptureSpokenAnswer(ctx)
			if text == "" {
				// Failure already reported; the user can type instead.
				continue
			}
			fmt.Fprintf(ui.out, "🗣 You said: %s\n", text)
			line = text
		}

		if strings.TrimSpace(line) == "" {
			fmt.Fprintf(ui.out, "⚠ %v\n", session.ErrEmptyAnswer)
			continue
		}

		fmt.Fprintln(ui.out, "🤖 Evaluating your answer...")
		if err := ui.session.SubmitAnswer(ctx, line); err != nil {
			return err
		}

		records := ui.session.Records()
		fmt.Fprintf(ui.out, "\n%s\n", records[len(records)-1].Feedback)
		return nil
	}
}

// printSummary lists every record before the report is offered.
func (ui *interviewUI) printSummary() {
	fmt.Fprintln(ui.out, "\n🎉 Interview completed!")
	fmt.Fprintln(ui.out, "📝 Your interview summary:")
	ui.printer.PrintSummary(ui.session.Records())
}

// reportPhase offers report generation once the session is in Summary.
func (ui *interviewUI) reportPhase(ctx context.Context) error {
	if !ui.confirm("\nGenerate final report?") {
		return nil
	}

	fmt.Fprintln(ui.out, "Generating your comprehensive report...")
	report, err := ui.session.GenerateReport(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(ui.out)
	ui.printer.PrintReport(report)
	return nil
}

func (ui *interviewUI) prompt(label, fallback string) string {
	fmt.Fprintf(ui.out, "%s [%s]: ", label, fallback)
	line, err := ui.readLine()
	if err != nil || strings.TrimSpace(line) == "" {
		return fallback
	}
	return strings.TrimSpace(line)
}

func (ui *interviewUI) confirm(question string) bool {
	fmt.Fprintf(ui.out, "%s [y/N]: ", question)
	line, err := ui.readLine()
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (ui *interviewUI) readLine() (string, error) {
	line, err := ui.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
