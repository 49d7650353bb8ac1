package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"apply_bot/internal/metrics"
)

// Идентификаторы кнопок, которые понимает анкета.
const (
	ButtonYesForm       = "yes_form"
	ButtonNoForm        = "no_form"
	ButtonFormCompleted = "form_completed"
	ButtonGroupJoined   = "group_joined"
)

// Button — одна inline-кнопка исходящего сообщения.
type Button struct {
	Label string
	Data  string
}

// Reply — исходящее сообщение анкеты. Пустой Reply означает "ничего не отвечать".
type Reply struct {
	Text    string
	Buttons [][]Button
}

func (r Reply) IsZero() bool {
	return r.Text == "" && len(r.Buttons) == 0
}

// Sink принимает одну завершенную заявку.
type Sink interface {
	Append(ctx context.Context, record Record) error
}

// Links — внешние ссылки, встраиваемые в подсказки анкеты.
type Links struct {
	FormURL  string
	GroupURL string
}

// Flow ведет фиксированную последовательность шагов анкеты. Обработка
// событий одной сессии не конкурентна: транспорт обязан доставлять
// обновления одного чата по одному.
type Flow struct {
	store  SessionStore
	sink   Sink
	links  Links
	logger *slog.Logger
	clock  func() time.Time
}

// NewFlow создает машину состояний анкеты поверх хранилища сессий и стока.
func NewFlow(store SessionStore, sink Sink, links Links, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		store:  store,
		sink:   sink,
		links:  links,
		logger: logger,
		clock:  time.Now,
	}
}

// buttonTransition описывает реакцию анкеты на кнопку в конкретной стадии.
type buttonTransition struct {
	next    Stage
	persist bool
	reply   func(f *Flow, s *Session) Reply
}

// buttonTransitions — полная таблица переходов (стадия, кнопка).
// Кнопки, отсутствующие в таблице для текущей стадии, игнорируются.
var buttonTransitions = map[Stage]map[string]buttonTransition{
	StageFormConfirm: {
		ButtonYesForm:       {next: StageName, reply: promptName},
		ButtonFormCompleted: {next: StageName, reply: promptName},
		ButtonNoForm:        {next: StageFormConfirm, reply: promptFormLink},
	},
	StageGroupProof: {
		ButtonGroupJoined: {next: StageDone, persist: true, reply: promptCompleted},
	},
}

// textTransition описывает стадию, принимающую свободный текст.
type textTransition struct {
	assign func(r *Record, text string)
	next   Stage
	reply  func(f *Flow, s *Session) Reply
}

// textTransitions — таблица переходов для текстовых стадий. Текст
// сохраняется дословно, без нормализации.
var textTransitions = map[Stage]textTransition{
	StageName: {
		assign: func(r *Record, text string) { r.FullName = text },
		next:   StagePosition,
		reply:  promptPosition,
	},
	StagePosition: {
		assign: func(r *Record, text string) { r.Position = text },
		next:   StageLocation,
		reply:  promptLocation,
	},
	StageLocation: {
		assign: func(r *Record, text string) { r.Location = text },
		next:   StageExperience,
		reply:  promptExperience,
	},
	StageExperience: {
		assign: func(r *Record, text string) { r.Experience = text },
		next:   StageGroupProof,
		reply:  promptGroupLink,
	},
}

// Start создает свежую сессию и спрашивает про внешнюю форму. Повторный
// /start всегда начинает анкету заново.
func (f *Flow) Start(ctx context.Context, chatID int64) (Reply, error) {
	session := Session{
		ChatID:    chatID,
		Stage:     StageFormConfirm,
		Record:    Record{ChatID: chatID},
		UpdatedAt: f.clock(),
	}
	if err := f.store.Put(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("start session: %w", err)
	}
	metrics.SessionsStarted.Inc()
	return promptFormConfirm(f, &session), nil
}

// Button применяет нажатие кнопки к текущей стадии сессии. Время at —
// время исходного сообщения Telegram; оно становится отметкой заявки
// на терминальном переходе.
func (f *Flow) Button(ctx context.Context, chatID int64, buttonID string, at time.Time) (Reply, error) {
	session, err := f.store.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Reply{}, nil
		}
		return Reply{}, fmt.Errorf("load session: %w", err)
	}

	transition, ok := buttonTransitions[session.Stage][buttonID]
	if !ok {
		return Reply{}, nil
	}

	session.Stage = transition.next
	session.UpdatedAt = f.clock()

	if transition.persist {
		session.Record.SubmittedAt = at
		f.persist(ctx, session.Record)
	}

	if session.Stage == StageDone {
		if err := f.store.Delete(ctx, chatID); err != nil {
			f.logger.Error("delete completed session", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		}
		metrics.SessionsCompleted.Inc()
	} else if err := f.store.Put(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}

	return transition.reply(f, &session), nil
}

// Text применяет свободный текст к текущей стадии сессии. Вне текстовых
// стадий и без активной сессии пользователь получает общее напоминание.
func (f *Flow) Text(ctx context.Context, chatID int64, text string) (Reply, error) {
	session, err := f.store.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Reply{Text: noticeFollowFlow}, nil
		}
		return Reply{}, fmt.Errorf("load session: %w", err)
	}

	transition, ok := textTransitions[session.Stage]
	if !ok {
		return Reply{Text: noticeFollowFlow}, nil
	}

	transition.assign(&session.Record, text)
	session.Stage = transition.next
	session.UpdatedAt = f.clock()
	if err := f.store.Put(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	return transition.reply(f, &session), nil
}

// Cancel завершает сессию без выгрузки заявки.
func (f *Flow) Cancel(ctx context.Context, chatID int64) (Reply, error) {
	if _, err := f.store.Get(ctx, chatID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Reply{Text: noticeFollowFlow}, nil
		}
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	if err := f.store.Delete(ctx, chatID); err != nil {
		return Reply{}, fmt.Errorf("delete session: %w", err)
	}
	metrics.SessionsCancelled.Inc()
	return Reply{Text: noticeCancelled}, nil
}

// persist выгружает завершенную заявку. Отказ стока логируется и не
// прерывает диалог: пользователь в любом случае видит подтверждение.
func (f *Flow) persist(ctx context.Context, record Record) {
	if f.sink == nil {
		return
	}
	if err := f.sink.Append(ctx, record); err != nil {
		f.logger.Error("append application record",
			slog.Int64("chat_id", record.ChatID),
			slog.String("error", err.Error()))
		return
	}
	f.logger.Info("application saved", slog.Int64("chat_id", record.ChatID))
}
