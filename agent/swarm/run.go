package swarm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/swarmflow/agent/messages"
	"github.com/BaSui01/swarmflow/internal/ctxkeys"
	"github.com/BaSui01/swarmflow/types"
)

// Stop reasons recorded in metrics.
const (
	stopTermination = "termination"
	stopMaxTurns    = "max_turns"
	stopError       = "error"
	stopCancelled   = "cancelled"
)

// TaskResult is the outcome of a run.
type TaskResult struct {
	// Messages holds the task and every message produced during the run.
	Messages []messages.Message `json:"messages"`

	StopReason string `json:"stop_reason"`
}

// Run appends task to the conversation and lets participants take turns until the
// termination condition fires or the turn limit is reached. Calling Run with no
// task resumes the conversation with the current speaker.
func (t *Team) Run(ctx context.Context, task ...messages.Message) (result *TaskResult, err error) {
	if !t.mu.TryLock() {
		return nil, types.NewError(types.ErrTeamRunning, "the team is already running")
	}
	defer t.mu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	ctx = ctxkeys.WithRunID(ctx, runID)
	if t.conversationID != "" {
		ctx = ctxkeys.WithConversationID(ctx, t.conversationID)
	}
	t.metrics.RunStarted(t.name)
	ctx, span := t.tracer.Start(ctx, "swarm.run", trace.WithAttributes(
		attribute.String("swarm.team", t.name),
		attribute.String("swarm.run_id", runID),
		attribute.Int("swarm.task_messages", len(task)),
	))
	reason := stopError
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if ctx.Err() != nil {
				reason = stopCancelled
			}
		} else {
			span.SetAttributes(attribute.String("swarm.stop_reason", result.StopReason))
		}
		span.End()
		t.metrics.RecordRun(t.name, reason, time.Since(start))
		t.metrics.RecordThreadLength(t.name, t.thread.Len())
	}()

	for i, msg := range task {
		if msg == nil {
			return nil, types.Errorf(types.ErrInvalidRequest, "task message %d is nil", i)
		}
		if verr := msg.Validate(); verr != nil {
			return nil, types.WrapError(verr, types.ErrInvalidRequest, fmt.Sprintf("task message %d", i))
		}
	}
	if verr := t.manager.ValidateGroupState(task); verr != nil {
		t.metrics.RecordValidationFailure(t.name)
		return nil, verr
	}

	t.logger.Info("run started",
		zap.String("run_id", runID),
		zap.Int("task_messages", len(task)),
		zap.Int("thread_len", t.thread.Len()),
		zap.String("speaker", t.manager.CurrentSpeaker()),
	)

	t.thread.Append(task...)
	t.recordHandoffs(task)
	produced := append([]messages.Message(nil), task...)

	stop, err := t.checkTermination(ctx, task)
	if err != nil {
		return nil, err
	}

	delta := task
	for stop == nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}

		reply, terr := t.takeTurn(ctx, delta)
		if terr != nil {
			return nil, terr
		}
		produced = append(produced, reply...)
		turn := t.manager.AdvanceTurn()

		if stop, err = t.checkTermination(ctx, reply); err != nil {
			return nil, err
		}
		if stop == nil && t.maxTurns > 0 && turn >= t.maxTurns {
			stop = messages.NewStopMessage(t.name, fmt.Sprintf("Maximum number of turns %d reached.", t.maxTurns))
			reason = stopMaxTurns
			if t.termination != nil {
				if rerr := t.termination.Reset(ctx); rerr != nil {
					return nil, fmt.Errorf("reset termination condition: %w", rerr)
				}
			}
			t.manager.ResetTurn()
		}
		if stop == nil {
			if cerr := t.checkpoint(ctx); cerr != nil {
				return nil, cerr
			}
		}
		delta = reply
	}
	if reason != stopMaxTurns {
		reason = stopTermination
	}

	if cerr := t.checkpoint(ctx); cerr != nil {
		return nil, cerr
	}

	t.logger.Info("run finished",
		zap.String("run_id", runID),
		zap.String("stop_reason", stop.Content),
		zap.Int("messages", len(produced)),
		zap.Duration("duration", time.Since(start)),
	)
	return &TaskResult{Messages: produced, StopReason: stop.Content}, nil
}

// takeTurn selects the next speaker from delta and lets it reply.
func (t *Team) takeTurn(ctx context.Context, delta []messages.Message) ([]messages.Message, error) {
	h, handoff := latestHandoff(delta)
	if handoff && !t.registry.Contains(h.Target) {
		t.metrics.RecordValidationFailure(t.name)
		return nil, types.Errorf(types.ErrInvalidHandoffTarget,
			"%s handed off to %s which is not one of the participants %v", h.Source, h.Target, t.registry.Names())
	}

	speakers, err := t.manager.SelectSpeaker(delta)
	if err != nil {
		return nil, err
	}
	speaker := speakers[0]
	t.metrics.RecordSpeakerSelection(t.name, speaker, handoff)

	agent, ok := t.agents[speaker]
	if !ok {
		return nil, types.Errorf(types.ErrInvalidHandoffTarget,
			"current speaker %s is not one of the participants %v; resume with a handoff message to a valid participant", speaker, t.registry.Names())
	}

	turn := t.manager.CurrentTurn() + 1
	if t.emitTeamEvents && t.eventSink != nil {
		t.eventSink(ctx, SpeakerSelectedEvent{
			Team:    t.name,
			Speaker: speaker,
			Turn:    turn,
			Handoff: handoff,
			At:      time.Now().UTC(),
		})
	}

	ctx = ctxkeys.WithSpeaker(ctx, speaker)
	ctx, span := t.tracer.Start(ctx, "swarm.turn", trace.WithAttributes(
		attribute.String("swarm.speaker", speaker),
		attribute.Int("swarm.turn", turn),
	))
	defer span.End()

	start := time.Now()
	reply, err := agent.OnMessages(ctx, t.thread.Messages())
	if err == nil {
		err = validateReply(reply)
	}
	if err != nil {
		t.metrics.RecordTurn(t.name, speaker, "error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Error("participant failed", zap.String("speaker", speaker), zap.Int("turn", turn), zap.Error(err))
		return nil, types.WrapError(err, types.ErrParticipant, "participant "+speaker)
	}
	t.metrics.RecordTurn(t.name, speaker, "success", time.Since(start))
	span.SetAttributes(attribute.Int("swarm.reply_messages", len(reply)))

	t.thread.Append(reply...)
	t.recordHandoffs(reply)
	t.logger.Debug("turn completed",
		zap.String("speaker", speaker),
		zap.Int("turn", turn),
		zap.Int("reply_messages", len(reply)),
	)
	return reply, nil
}

func validateReply(reply []messages.Message) error {
	for i, msg := range reply {
		if msg == nil {
			return fmt.Errorf("reply message %d is nil", i)
		}
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("reply message %d: %w", i, err)
		}
	}
	return nil
}

// checkTermination evaluates the condition against delta. When it fires the
// condition is reset and the turn counter goes back to zero.
func (t *Team) checkTermination(ctx context.Context, delta []messages.Message) (*messages.StopMessage, error) {
	if t.termination == nil || len(delta) == 0 {
		return nil, nil
	}
	stop, err := t.termination.Check(ctx, delta)
	if err != nil {
		return nil, fmt.Errorf("check termination condition: %w", err)
	}
	if stop == nil {
		return nil, nil
	}
	if err := t.termination.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset termination condition: %w", err)
	}
	t.manager.ResetTurn()
	return stop, nil
}

func (t *Team) checkpoint(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	start := time.Now()
	state, err := t.manager.SaveState()
	if err == nil {
		err = saveState(ctx, t.store, t.conversationID, state)
	}
	t.metrics.RecordStateOperation("save", err, time.Since(start))
	if err != nil {
		t.logger.Error("checkpoint failed", zap.String("conversation_id", t.conversationID), zap.Error(err))
	}
	return err
}

// recordHandoffs counts handoffs by endpoint. Names outside the team share the
// externalLabel value so callers cannot grow the label set.
func (t *Team) recordHandoffs(msgs []messages.Message) {
	for _, msg := range msgs {
		if h, ok := messages.AsHandoff(msg); ok {
			t.metrics.RecordHandoff(t.name, t.participantLabel(h.Source), t.participantLabel(h.Target))
		}
	}
}

const externalLabel = "external"

func (t *Team) participantLabel(name string) string {
	if t.registry.Contains(name) {
		return name
	}
	return externalLabel
}
