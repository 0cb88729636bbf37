package domain

import (
	"errors"
	"fmt"
)

// Moderation actors.
const (
	ActorAdmin  = "admin"
	ActorAuthor = "author"
)

// ErrInvalidTransition is returned for a status change the workflow forbids.
var ErrInvalidTransition = errors.New("invalid review status transition")

// Transition is one permitted status change and who may perform it.
type Transition struct {
	From  ReviewStatus
	To    ReviewStatus
	Actor string
}

var reviewTransitions = []Transition{
	{From: StatusPending, To: StatusApproved, Actor: ActorAdmin},
	{From: StatusRejected, To: StatusApproved, Actor: ActorAdmin},
	{From: StatusPending, To: StatusRejected, Actor: ActorAdmin},
	{From: StatusApproved, To: StatusRejected, Actor: ActorAdmin},
	// An edit by the author sends an approved review back to moderation.
	{From: StatusApproved, To: StatusPending, Actor: ActorAuthor},
}

type transitionKey struct {
	from  ReviewStatus
	to    ReviewStatus
	actor string
}

var transitionSet = func() map[transitionKey]struct{} {
	m := make(map[transitionKey]struct{}, len(reviewTransitions))
	for _, t := range reviewTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = struct{}{}
	}
	return m
}()

// ReviewTransitions returns the full transition table.
func ReviewTransitions() []Transition {
	out := make([]Transition, len(reviewTransitions))
	copy(out, reviewTransitions)
	return out
}

// CanTransition returns nil when actor may move a review from one status to
// another, and an error wrapping ErrInvalidTransition otherwise.
func CanTransition(from, to ReviewStatus, actor string) error {
	if _, ok := transitionSet[transitionKey{from, to, actor}]; ok {
		return nil
	}
	if from == to {
		return fmt.Errorf("%w: review is already %s", ErrInvalidTransition, to)
	}
	return fmt.Errorf("%w: %s cannot move a review from %s to %s", ErrInvalidTransition, actor, from, to)
}

// StatusAfterEdit is the status a review takes when its author edits it.
// Approved reviews return to pending; others keep their status.
func StatusAfterEdit(current ReviewStatus) ReviewStatus {
	if CanTransition(current, StatusPending, ActorAuthor) == nil {
		return StatusPending
	}
	return current
}
