// Package comments posts pre-authored reviews onto a product page through a
// browser driver.
package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Angabebr/shop-tools/logger"
)

// Driver is the set of browser primitives the comment flow needs. Selectors
// are CSS queries.
type Driver interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	StopLoading(ctx context.Context) error
	WaitClickable(ctx context.Context, selector string, timeout time.Duration) error
	ScrollIntoView(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	JSClick(ctx context.Context, selector string) error
	SendText(ctx context.Context, selector, text string) error
}

// Session is a Driver that holds a browser which must be released.
type Session interface {
	Driver
	Close() error
}

// Opener acquires a Session for one batch.
type Opener func(ctx context.Context) (Session, error)

type Selectors struct {
	OpenForm string `yaml:"open_form"`
	Author   string `yaml:"author"`
	Title    string `yaml:"title"`
	Comment  string `yaml:"comment"`
	Rating   string `yaml:"rating"`
	Submit   string `yaml:"submit"`
}

// DefaultSelectors match the shop comment form the tool was written for.
var DefaultSelectors = Selectors{
	OpenForm: "#wz-shop-comment-from-open",
	Author:   "[name='author']",
	Title:    "[name='title']",
	Comment:  "[name='comment']",
	Rating:   "input[type='radio'][value='5']",
	Submit:   "#submit",
}

type Timing struct {
	PageLoadTimeout time.Duration
	ClickTimeout    time.Duration
	// Settle is waited after scrolling and after opening the form.
	Settle     time.Duration
	SubmitWait time.Duration
	RowDelay   time.Duration
}

var DefaultTiming = Timing{
	PageLoadTimeout: 10 * time.Second,
	ClickTimeout:    10 * time.Second,
	Settle:          1 * time.Second,
	SubmitWait:      3 * time.Second,
	RowDelay:        5 * time.Second,
}

type Submitter struct {
	productURL string
	selectors  Selectors
	timing     Timing
}

func NewSubmitter(productURL string, selectors Selectors, timing Timing) *Submitter {
	return &Submitter{
		productURL: productURL,
		selectors:  selectors,
		timing:     timing,
	}
}

// Failure records a comment that could not be posted.
type Failure struct {
	Index   int
	Comment Comment
	Err     error
}

type Report struct {
	Total     int
	Submitted int
	Failed    []Failure
}

// Steps returns the form flow for c.
func (s *Submitter) Steps(c Comment) []Step {
	sel := s.selectors
	return []Step{
		{
			Name: "load product page",
			Strategies: []Strategy{
				{Name: "navigate", Do: func(ctx context.Context, d Driver) error {
					return d.Navigate(ctx, s.productURL, s.timing.PageLoadTimeout)
				}},
				{Name: "stop loading", Do: func(ctx context.Context, d Driver) error {
					return d.StopLoading(ctx)
				}},
			},
		},
		{
			Name:     "reveal comment form button",
			Critical: true,
			Strategies: []Strategy{
				{Name: "scroll and wait", Do: func(ctx context.Context, d Driver) error {
					if err := d.ScrollIntoView(ctx, sel.OpenForm); err != nil {
						return err
					}
					if err := sleep(ctx, s.timing.Settle); err != nil {
						return err
					}
					return d.WaitClickable(ctx, sel.OpenForm, s.timing.ClickTimeout)
				}},
			},
		},
		clickStep("open comment form", sel.OpenForm, true, s.timing.Settle),
		typeStep("fill author", sel.Author, c.Name, true),
		typeStep("fill title", sel.Title, c.Title, false),
		typeStep("fill comment", sel.Comment, c.Content, true),
		clickStep("select rating", sel.Rating, false, 0),
		clickStep("submit", sel.Submit, true, s.timing.SubmitWait),
	}
}

func clickStep(name, selector string, critical bool, after time.Duration) Step {
	return Step{
		Name:     name,
		Critical: critical,
		After:    after,
		Strategies: []Strategy{
			{Name: "standard click", Do: func(ctx context.Context, d Driver) error {
				return d.Click(ctx, selector)
			}},
			{Name: "javascript click", Do: func(ctx context.Context, d Driver) error {
				return d.JSClick(ctx, selector)
			}},
		},
	}
}

func typeStep(name, selector, text string, critical bool) Step {
	return Step{
		Name:     name,
		Critical: critical,
		Strategies: []Strategy{
			{Name: "send keys", Do: func(ctx context.Context, d Driver) error {
				return d.SendText(ctx, selector, text)
			}},
		},
	}
}

// ErrIncompleteComment is returned by Submit for a comment without a name or
// content; the form rejects those.
var ErrIncompleteComment = errors.New("comment has no name or content")

// Submit runs the form flow for one comment. Non-critical step failures are
// logged and skipped; the first critical failure is returned.
func (s *Submitter) Submit(ctx context.Context, d Driver, c Comment) error {
	if c.Name == "" || c.Content == "" {
		return ErrIncompleteComment
	}
	logger.InfoWithFields("submitting comment", logger.Fields{"name": c.Name, "title": c.Title})

	for _, step := range s.Steps(c) {
		err := step.Run(ctx, d)
		if err == nil {
			logger.DebugWithFields("step done", logger.Fields{"step": step.Name, "name": c.Name})
			continue
		}
		var stepErr *StepError
		if !errors.As(err, &stepErr) {
			return err
		}
		if stepErr.Critical {
			logger.ErrorWithFields("critical step failed", logger.Fields{"step": step.Name, "error": err.Error()})
			return err
		}
		logger.WarnWithFields("optional step failed, skipping", logger.Fields{"step": step.Name, "error": err.Error()})
	}

	logger.InfoWithFields("comment submitted", logger.Fields{"name": c.Name, "title": c.Title})
	return nil
}

// SubmitAll posts every comment in order through d, waiting RowDelay
// between them. A failed comment is recorded and the batch moves on; only
// context cancellation stops it early.
func (s *Submitter) SubmitAll(ctx context.Context, d Driver, comments []Comment) (*Report, error) {
	report := &Report{Total: len(comments)}

	for i, c := range comments {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := s.Submit(ctx, d, c); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed = append(report.Failed, Failure{Index: i, Comment: c, Err: err})
		} else {
			report.Submitted++
		}

		if i < len(comments)-1 {
			if err := sleep(ctx, s.timing.RowDelay); err != nil {
				return report, err
			}
		}
	}

	logger.InfoWithFields("batch finished", logger.Fields{
		"total":     report.Total,
		"submitted": report.Submitted,
		"failed":    len(report.Failed),
	})
	return report, nil
}

// RunBatch opens one session, submits all comments through it and closes it
// on every exit path.
func (s *Submitter) RunBatch(ctx context.Context, open Opener, comments []Comment) (*Report, error) {
	session, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Log.Warnf("failed to close browser session: %v", cerr)
		}
		logger.Log.Info("browser closed")
	}()

	return s.SubmitAll(ctx, session, comments)
}
