package service

import (
	"context"
	"strings"

	"github.com/arrahchii/portfolio-sub000/internal/model"
	"github.com/arrahchii/portfolio-sub000/internal/profile"
	"github.com/arrahchii/portfolio-sub000/pkg/log"
)

// ImageSource resolves the URL of the owner's profile picture.
type ImageSource interface {
	ProfileImageURL(ctx context.Context) (string, error)
}

// PersonalQueryDetector recognises questions about the portfolio owner and
// answers them with the profile card.
type PersonalQueryDetector struct {
	profile  profile.Profile
	triggers []string
	images   ImageSource
}

// NewPersonalQueryDetector creates a detector. images may be nil, in which
// case the profile's static image URL is always used.
func NewPersonalQueryDetector(p profile.Profile, images ImageSource) *PersonalQueryDetector {
	triggers := make([]string, 0, len(p.Triggers))
	for _, t := range p.Triggers {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			triggers = append(triggers, t)
		}
	}
	return &PersonalQueryDetector{profile: p, triggers: triggers, images: images}
}

// IsPersonalQuery reports whether the message contains any trigger phrase, case-insensitively.
func (d *PersonalQueryDetector) IsPersonalQuery(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, t := range d.triggers {
		if strings.Contains(normalized, t) {
			return true
		}
	}
	return false
}

// Response builds the profile reply.
func (d *PersonalQueryDetector) Response(ctx context.Context) model.Reply {
	return model.ProfileReply(d.profile.Bio, d.ImageURL(ctx))
}

// ImageURL returns the presigned profile image URL, or the static one when none can be issued.
func (d *PersonalQueryDetector) ImageURL(ctx context.Context) string {
	if d.images == nil {
		return d.profile.ImageURL
	}
	url, err := d.images.ProfileImageURL(ctx)
	if err != nil || url == "" {
		log.Warnw("falling back to static profile image url", "error", err)
		return d.profile.ImageURL
	}
	return url
}
