// Package model defines core data structures and types for the ghostwriter store.
package model

import (
	"strings"
	"time"
)

type DraftID string

// Draft is one piece of generated or saved content.
type Draft struct {
	ID DraftID `json:"id" validate:"required"`

	Topic   string `json:"topic"`
	Format  string `json:"format"`
	Content string `json:"content"`

	CreatedAt time.Time `json:"createdAt" validate:"required"`

	// Present only when the draft is placed on the content calendar.
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
}

// NewDraft holds the caller-supplied fields of a draft. The store assigns
// everything else.
type NewDraft struct {
	Topic   string `json:"topic"`
	Format  string `json:"format"`
	Content string `json:"content"`
}

func (d *Draft) IsScheduled() bool {
	return d.ScheduledDate != nil
}

// Clone returns a deep copy; the scheduled date pointer is not shared.
func (d Draft) Clone() Draft {
	if d.ScheduledDate != nil {
		t := *d.ScheduledDate
		d.ScheduledDate = &t
	}
	return d
}

// GetTitle returns "<topic> (<format>)", or whichever of the two is set.
func (d *Draft) GetTitle() string {
	topic := strings.TrimSpace(d.Topic)
	format := strings.TrimSpace(d.Format)

	switch {
	case topic == "" && format == "":
		return "Untitled - " + d.CreatedAt.Format("2006-01-02")
	case format == "":
		return topic
	case topic == "":
		return format
	}

	var s strings.Builder
	s.WriteString(topic)
	s.WriteString(" (")
	s.WriteString(format)
	s.WriteString(")")
	return s.String()
}
