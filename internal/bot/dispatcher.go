// Package bot routes Telegram updates to the description use case.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"seo-assistant/internal/domain"
	"seo-assistant/internal/repository"
	"seo-assistant/internal/usecase"
)

// Messenger is the subset of *tgbotapi.BotAPI the dispatcher needs.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Describer interface {
	Describe(ctx context.Context, in usecase.DescribeInput) (usecase.DescribeOutput, error)
}

type Options struct {
	// TracingEnabled only changes the /status reply.
	TracingEnabled bool
	Logger         *slog.Logger
}

// Dispatcher owns the session table and handles one update per call.
type Dispatcher struct {
	api            Messenger
	describer      Describer
	sessions       repository.SessionStore
	tracingEnabled bool
	logger         *slog.Logger
	now            func() time.Time

	inflight sync.WaitGroup
}

func NewDispatcher(api Messenger, describer Describer, sessions repository.SessionStore, opts Options) (*Dispatcher, error) {
	if api == nil {
		return nil, errors.New("bot: messenger must not be nil")
	}
	if describer == nil {
		return nil, errors.New("bot: describer must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("bot: session store must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		api:            api,
		describer:      describer,
		sessions:       sessions,
		tracingEnabled: opts.TracingEnabled,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// Run handles every update from updates in its own goroutine until ctx is
// cancelled or the channel is closed, then waits for in-flight handlers.
// Handlers do not observe the cancellation of ctx.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer d.inflight.Wait()

	handlerCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			d.inflight.Add(1)
			go func(u tgbotapi.Update) {
				defer d.inflight.Done()
				if err := d.HandleUpdate(handlerCtx, u); err != nil {
					d.logger.Error("update handling failed", "update_id", u.UpdateID, "err", err)
				}
			}(update)
		}
	}
}

// HandleUpdate routes a single update. Updates the bot does not understand are
// ignored without a reply.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return d.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return d.handleMessage(ctx, update.Message)
	default:
		return nil
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return d.handleStart(ctx, msg)
		case "help":
			return d.send(tgbotapi.NewMessage(msg.Chat.ID, helpText))
		case "status":
			return d.send(tgbotapi.NewMessage(msg.Chat.ID, statusText(d.tracingEnabled)))
		default:
			return nil
		}
	}

	if msg.Text == "" {
		return nil
	}

	session, err := d.sessions.Get(ctx, msg.From.ID)
	if err != nil {
		return fmt.Errorf("bot: load session: %w", err)
	}
	if !session.Awaiting() {
		d.logger.Debug("ignoring text outside description flow", "user_id", msg.From.ID)
		return nil
	}
	return d.handleDescription(ctx, msg)
}

func (d *Dispatcher) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if err := d.arm(ctx, msg.From.ID); err != nil {
		return err
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, welcomeText(msg.From.FirstName))
	reply.ReplyMarkup = welcomeKeyboard()
	return d.send(reply)
}

func (d *Dispatcher) handleDescription(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	notice, err := d.api.Send(tgbotapi.NewMessage(chatID, processingText))
	if err != nil {
		return fmt.Errorf("bot: send processing notice: %w", err)
	}

	result := d.generate(ctx, msg)

	if _, err := d.api.Request(tgbotapi.NewDeleteMessage(chatID, notice.MessageID)); err != nil {
		return fmt.Errorf("bot: delete processing notice: %w", err)
	}
	if err := d.send(tgbotapi.NewMessage(chatID, resultPrefix+result)); err != nil {
		return err
	}

	followUp := tgbotapi.NewMessage(chatID, anotherOneText)
	followUp.ReplyMarkup = anotherOneKeyboard()
	return d.send(followUp)
}

// generate returns the text to show the user: the description or the error
// line. Successful turns are recorded and bump the user's counter in the
// store; a store failure is only logged.
func (d *Dispatcher) generate(ctx context.Context, msg *tgbotapi.Message) string {
	userID := msg.From.ID
	out, err := d.describer.Describe(ctx, usecase.DescribeInput{
		UserID: strconv.FormatInt(userID, 10),
		Text:   msg.Text,
	})
	if err != nil {
		return errorText(err)
	}

	turn := domain.DescriptionTurn{
		UserID:    userID,
		RequestID: out.RequestID,
		Input:     msg.Text,
		Output:    out.Text,
		CreatedAt: d.now().UTC(),
	}
	if err := d.sessions.SaveTurn(ctx, turn); err != nil {
		d.logger.Warn("failed to record description turn",
			"user_id", userID,
			"request_id", out.RequestID,
			"err", err,
		)
	}
	return out.Text
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	var text string
	switch cb.Data {
	case CallbackCreateDescription:
		if cb.From == nil {
			return nil
		}
		if err := d.arm(ctx, cb.From.ID); err != nil {
			return err
		}
		text = promptText
	case CallbackHelp:
		text = callbackHelpText
	default:
		return nil
	}

	if cb.Message != nil {
		edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
		if _, err := d.api.Request(edit); err != nil {
			return fmt.Errorf("bot: edit message: %w", err)
		}
	}
	if _, err := d.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		return fmt.Errorf("bot: answer callback: %w", err)
	}
	return nil
}

// arm puts the user into the description flow. The flag is never cleared.
func (d *Dispatcher) arm(ctx context.Context, userID int64) error {
	if err := d.sessions.SetState(ctx, userID, domain.StateAwaitingDescription); err != nil {
		return fmt.Errorf("bot: save session: %w", err)
	}
	return nil
}

func (d *Dispatcher) send(c tgbotapi.Chattable) error {
	if _, err := d.api.Send(c); err != nil {
		return fmt.Errorf("bot: send message: %w", err)
	}
	return nil
}
