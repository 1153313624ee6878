package prompt

import (
	"fmt"
	"strings"
)

const systemPreamble = `Act as a polite customer service agent for a clothing company.
Your task is to generate a polite, brand-consistent email reply to the customer email you receive.`

// Request holds the agent's form selections. CustomerEmail itself travels as
// the user message, not inside the system prompt.
type Request struct {
	Intents     []string `json:"intents"`
	Tone        string   `json:"tone,omitempty"`
	Length      string   `json:"length,omitempty"`
	ManagerNote string   `json:"manager_note,omitempty"`
}

// Build assembles the system prompt from the request. Unknown intent, tone,
// or length IDs are rejected so stale clients fail loudly instead of
// silently dropping instructions.
func Build(req Request) (string, error) {
	if len(req.Intents) == 0 {
		return "", fmt.Errorf("at least one intent is required")
	}

	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nThe reply must convey the following:\n")
	for _, id := range req.Intents {
		opt, ok := findOption(Intents, id)
		if !ok {
			return "", fmt.Errorf("unknown intent %q", id)
		}
		b.WriteString("- ")
		b.WriteString(opt.Effect)
		b.WriteString("\n")
	}

	b.WriteString("\nAvoid the following expressions/words, without changing the intent of the message: ")
	b.WriteString(strings.Join(AvoidList, ", "))
	b.WriteString("\n")

	if req.Tone != "" {
		opt, ok := findOption(Tones, req.Tone)
		if !ok {
			return "", fmt.Errorf("unknown tone %q", req.Tone)
		}
		b.WriteString("\n")
		b.WriteString(opt.Effect)
		b.WriteString("\n")
	}

	if req.Length != "" {
		opt, ok := findOption(Lengths, req.Length)
		if !ok {
			return "", fmt.Errorf("unknown length %q", req.Length)
		}
		b.WriteString("\n")
		b.WriteString(opt.Effect)
		b.WriteString("\n")
	}

	if note := strings.TrimSpace(req.ManagerNote); note != "" {
		fmt.Fprintf(&b, "\nManager's special instruction: %s\n", note)
	}

	b.WriteString("\nEverything must be in Portuguese from Portugal.\nBe polite and concise.")

	return b.String(), nil
}
