// Package profile holds the portfolio owner's data: bio, persona prompt,
// personal-query triggers and the quick-question table. Every other package
// reads it from here.
package profile

import (
	"fmt"

	"github.com/arrahchii/portfolio-sub000/internal/config"
)

// QuickQuestion is a UI-offered question with its canned answer.
type QuickQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Profile describes the portfolio owner.
type Profile struct {
	Name           string          `json:"name"`
	Bio            string          `json:"bio"`
	ImageURL       string          `json:"imageUrl"`
	SystemPrompt   string          `json:"-"`
	Triggers       []string        `json:"-"`
	QuickQuestions []QuickQuestion `json:"-"`
}

const defaultName = "Lance"

const defaultBio = "Hi, I'm Lance! I'm a full-stack developer who enjoys turning ideas into " +
	"fast, reliable products. I work mostly with Go, TypeScript and React, and I care about " +
	"clean APIs, thoughtful UX and shipping things people actually use. When I'm not coding " +
	"I'm usually exploring new tools, contributing to side projects or learning something new."

const defaultImageURL = "/images/profile.jpg"

// DefaultTriggers are the lower-case phrases that mark a personal query.
var DefaultTriggers = []string{
	"who is lance",
	"who's lance",
	"about lance",
	"tell me about lance",
	"lance's background",
	"about you",
	"who are you",
	"tell me about yourself",
	"introduce yourself",
	"your background",
	"your skills",
	"your experience",
	"your profile",
	"what do you do",
	"who made this",
	"who built this",
	"who created this",
	"about the developer",
}

// DefaultQuickQuestions is the canned answer table behind the UI buttons.
var DefaultQuickQuestions = []QuickQuestion{
	{
		Question: "What projects are you most proud of?",
		Answer: "I'm most proud of this portfolio itself, including the AI chat you're using right now, " +
			"and a few full-stack apps where I owned everything from the database schema to the UI. " +
			"Check out the Projects tab for the details and live demos!",
	},
	{
		Question: "What are your skills?",
		Answer: "My core skills are Go, TypeScript, React and Node.js on the application side, " +
			"PostgreSQL, MySQL and Redis for data, and Docker plus CI/CD pipelines for shipping. " +
			"I also enjoy integrating LLM APIs into real products.",
	},
	{
		Question: "Are you available for work?",
		Answer: "Yes! I'm open to freelance projects and full-time opportunities. " +
			"Feel free to reach out through the Contact tab and tell me about what you're building.",
	},
	{
		Question: "How can I contact you?",
		Answer: "The easiest way is the contact form on this site. You can also find me on GitHub " +
			"and LinkedIn, linked in the Contact tab. I usually reply within a day or two.",
	},
}

// New returns the default profile with the non-empty fields of cfg applied.
func New(cfg config.ProfileConfig) Profile {
	p := Profile{
		Name:           defaultName,
		Bio:            defaultBio,
		ImageURL:       defaultImageURL,
		Triggers:       append([]string(nil), DefaultTriggers...),
		QuickQuestions: append([]QuickQuestion(nil), DefaultQuickQuestions...),
	}
	if cfg.Name != "" {
		p.Name = cfg.Name
	}
	if cfg.Bio != "" {
		p.Bio = cfg.Bio
	}
	if cfg.ImageURL != "" {
		p.ImageURL = cfg.ImageURL
	}
	if len(cfg.Triggers) > 0 {
		p.Triggers = append([]string(nil), cfg.Triggers...)
	}
	if len(cfg.QuickQuestions) > 0 {
		p.QuickQuestions = make([]QuickQuestion, 0, len(cfg.QuickQuestions))
		for _, q := range cfg.QuickQuestions {
			p.QuickQuestions = append(p.QuickQuestions, QuickQuestion{Question: q.Question, Answer: q.Answer})
		}
	}
	p.SystemPrompt = cfg.SystemPrompt
	if p.SystemPrompt == "" {
		p.SystemPrompt = buildSystemPrompt(p)
	}
	return p
}

// Default is New with an empty override.
func Default() Profile {
	return New(config.ProfileConfig{})
}

func buildSystemPrompt(p Profile) string {
	return fmt.Sprintf(`You are %[1]s, the owner of this portfolio website, chatting with a visitor.

About you:
%[2]s

Rules:
- Always answer in the first person, as %[1]s.
- Keep answers friendly, concise and professional (a few short paragraphs at most).
- If you don't know something about yourself, say so honestly and suggest using the contact form.
- Politely steer unrelated requests back to your work, projects and experience.`, p.Name, p.Bio)
}
