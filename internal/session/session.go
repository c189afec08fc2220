// Package session runs the interactive question and answer loop.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/DreamCats/docqa/internal/generation"
	"github.com/DreamCats/docqa/internal/retrieval"
)

// State is a step of the question loop
type State int

const (
	Idle State = iota
	AwaitingQuery
	Processing
	Presenting
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingQuery:
		return "awaiting_query"
	case Processing:
		return "processing"
	case Presenting:
		return "presenting"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Retriever finds the chunks relevant to a query
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]retrieval.Result, error)
}

// Options configures a session
type Options struct {
	ExitKeyword   string
	K             int // chunks per query; 0 uses the retriever default
	PreviewLength int // runes of each chunk shown to the user
	Language      string
}

// Turn describes what a single input line did
type Turn struct {
	Query   string
	Exit    bool // the session is over
	Skipped bool // blank line, nothing was asked
	Results []retrieval.Result
	Answer  string
	Notice  string // shown instead of, or after, an answer
	Err     error
}

// Session drives retrieval and generation for one user
type Session struct {
	id        string
	state     State
	turns     int
	retriever Retriever
	generator generation.Generator
	template  generation.Template
	messages  Messages
	opts      Options
}

// New creates a session in the Idle state
func New(retriever Retriever, generator generation.Generator, opts Options) (*Session, error) {
	if opts.ExitKeyword == "" {
		opts.ExitKeyword = "exit"
	}
	if opts.Language == "" {
		opts.Language = "ar"
	}

	tmpl, err := generation.TemplateFor(opts.Language)
	if err != nil {
		return nil, err
	}
	msgs, err := MessagesFor(opts.Language)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:        uuid.NewString(),
		state:     Idle,
		retriever: retriever,
		generator: generator,
		template:  tmpl,
		messages:  msgs,
		opts:      opts,
	}, nil
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Messages returns the console strings in use
func (s *Session) Messages() Messages {
	return s.messages
}

// Step consumes one input line and runs it through the loop. It returns in
// Presenting when the turn has output to show, AwaitingQuery for a blank line
// and Terminated once the session is over. The next Step leaves Presenting.
func (s *Session) Step(ctx context.Context, line string) Turn {
	if s.state == Terminated {
		return Turn{Exit: true}
	}
	s.state = AwaitingQuery

	query := strings.TrimSpace(line)
	if strings.EqualFold(query, s.opts.ExitKeyword) {
		s.state = Terminated
		log.Printf("session=%s exit turns=%d", s.id, s.turns)
		return Turn{Query: query, Exit: true, Notice: s.messages.Goodbye}
	}
	if query == "" {
		return Turn{Skipped: true}
	}

	s.turns++
	turn := Turn{Query: query}
	start := time.Now()

	s.state = Processing
	results, err := s.retriever.Retrieve(ctx, query, s.opts.K)
	if err != nil && !errors.Is(err, retrieval.ErrNoContext) {
		return s.fail(ctx, turn, "retrieve", err)
	}
	if len(results) == 0 {
		s.state = Presenting
		log.Printf("session=%s turn=%d no_context", s.id, s.turns)
		turn.Notice = s.messages.NoInformation
		return turn
	}
	turn.Results = results
	for _, r := range results {
		log.Printf("session=%s turn=%d chunk=%d score=%.4f", s.id, s.turns, r.Chunk.ID, r.Score)
	}

	prompt := generation.BuildPrompt(s.template, retrieval.JoinContext(results), query)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return s.fail(ctx, turn, "generate", err)
	}

	s.state = Presenting
	turn.Answer = strings.TrimSpace(answer)
	log.Printf("session=%s turn=%d answered chars=%d elapsed=%v", s.id, s.turns, len(turn.Answer), time.Since(start))
	return turn
}

func (s *Session) fail(ctx context.Context, turn Turn, phase string, err error) Turn {
	turn.Err = err
	if ctx.Err() != nil {
		s.state = Terminated
		turn.Exit = true
		log.Printf("session=%s turn=%d %s canceled: %v", s.id, s.turns, phase, err)
		return turn
	}

	log.Printf("session=%s turn=%d %s failed transient=%v: %v", s.id, s.turns, phase, isTransient(err), err)
	turn.Notice = s.messages.Failure
	s.state = Presenting
	return turn
}

func isTransient(err error) bool {
	var t interface{ Transient() bool }
	return errors.As(err, &t) && t.Transient()
}

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	headingColor = color.New(color.FgYellow, color.Bold)
	answerColor  = color.New(color.FgGreen)
	noticeColor  = color.New(color.FgMagenta)
	failureColor = color.New(color.FgRed)
)

// Run reads queries from in until the exit keyword, end of input or
// cancellation of ctx and writes everything the user sees to out.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	log.Printf("session=%s started lang=%s k=%d", s.id, s.opts.Language, s.opts.K)

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines := readLines(readCtx, in)

	s.state = AwaitingQuery
	for {
		if err := ctx.Err(); err != nil {
			return s.interrupted(out, err)
		}

		fmt.Fprintln(out)
		promptColor.Fprintf(out, s.messages.Prompt, s.opts.ExitKeyword)

		var line inputLine
		var ok bool
		select {
		case <-ctx.Done():
			return s.interrupted(out, ctx.Err())
		case line, ok = <-lines:
		}

		if !ok {
			s.state = Terminated
			fmt.Fprintln(out)
			noticeColor.Fprintln(out, s.messages.Goodbye)
			log.Printf("session=%s end of input turns=%d", s.id, s.turns)
			return nil
		}
		if line.err != nil {
			s.state = Terminated
			log.Printf("session=%s read failed: %v", s.id, line.err)
			return fmt.Errorf("failed to read input: %w", line.err)
		}

		turn := s.Step(ctx, line.text)
		s.present(out, turn)
		if turn.Exit {
			if err := ctx.Err(); err != nil {
				return s.interrupted(out, err)
			}
			return turn.Err
		}
		s.state = AwaitingQuery
	}
}

func (s *Session) interrupted(out io.Writer, err error) error {
	s.state = Terminated
	fmt.Fprintln(out)
	noticeColor.Fprintln(out, s.messages.Goodbye)
	log.Printf("session=%s interrupted turns=%d: %v", s.id, s.turns, err)
	return err
}

type inputLine struct {
	text string
	err  error
}

// readLines delivers lines from in until end of input or a read error. Lines
// have no length limit. The channel is closed when reading stops.
func readLines(ctx context.Context, in io.Reader) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(in)
		for {
			text, err := reader.ReadString('\n')
			if err == io.EOF && text == "" {
				return
			}
			item := inputLine{text: strings.TrimRight(text, "\r\n")}
			if err != nil && err != io.EOF {
				item = inputLine{err: err}
			}
			select {
			case lines <- item:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

func (s *Session) present(out io.Writer, turn Turn) {
	if len(turn.Results) > 0 {
		fmt.Fprintln(out)
		headingColor.Fprintln(out, s.messages.Retrieved)
		for _, r := range turn.Results {
			fmt.Fprintf(out, "- %s ...\n", r.Chunk.Preview(s.opts.PreviewLength))
		}
	}

	if turn.Answer != "" {
		fmt.Fprintln(out)
		headingColor.Fprintln(out, s.messages.Answer)
		answerColor.Fprintln(out, turn.Answer)
	}

	if turn.Notice != "" {
		fmt.Fprintln(out)
		if turn.Err != nil {
			failureColor.Fprintln(out, turn.Notice)
		} else {
			noticeColor.Fprintln(out, turn.Notice)
		}
	}
}
