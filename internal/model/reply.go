package model

// ReplyKind is the discriminant of Reply.
type ReplyKind string

const (
	ReplyText    ReplyKind = "text"
	ReplyProfile ReplyKind = "profile"
)

// ProfileFormatting is the formatting marker attached to profile replies.
const ProfileFormatting = "profile"

// Reply is the assistant's answer for one turn. Profile is set only when
// Kind is ReplyProfile.
type Reply struct {
	Kind    ReplyKind    `json:"kind"`
	Text    string       `json:"message"`
	Profile *ProfileCard `json:"profile,omitempty"`
}

// ProfileCard holds the structured part of a personal-query reply.
type ProfileCard struct {
	ImageURL   string `json:"imageUrl"`
	Formatting string `json:"formatting"`
}

// TextReply wraps plain text.
func TextReply(text string) Reply {
	return Reply{Kind: ReplyText, Text: text}
}

// ProfileReply builds the structured personal-query reply.
func ProfileReply(text, imageURL string) Reply {
	return Reply{
		Kind: ReplyProfile,
		Text: text,
		Profile: &ProfileCard{
			ImageURL:   imageURL,
			Formatting: ProfileFormatting,
		},
	}
}

// Metadata returns the key-value pairs persisted next to the reply text so
// that history readers can rebuild the reply kind.
func (r Reply) Metadata() map[string]interface{} {
	md := map[string]interface{}{"kind": string(r.Kind)}
	if r.Profile != nil {
		md["imageUrl"] = r.Profile.ImageURL
		md["formatting"] = r.Profile.Formatting
	}
	return md
}
