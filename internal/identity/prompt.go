package identity

import (
	"fmt"
	"strings"

	"github.com/sells-group/derm-scout/internal/model"
)

const systemPromptTmpl = `You identify medical professionals from video channel metadata. Given a channel, extract the real identity of the physician behind it.

Rules:
1. Extract the real legal name, not the channel or brand name. If the real name cannot be determined, set given_name and family_name to null.
2. Look for credentials such as MD, DO, MBBS, FAAD, FAACS.
3. Decide whether the person is (a) a licensed physician and (b) specifically a %[1]s.
4. Board certification means FAAD, FAACS or an explicit mention.
5. Derive the country from the description, the channel country or location mentions.

Respond with ONLY a JSON object. No text before or after it.`

const userPromptTmpl = `Extract the physician's identity from this channel:

Channel Name: %s
Handle: %s
Description (first %d chars): %s
Subscriber Count: %s
Channel Country: %s

Recent Video Titles:
%s

Return this exact JSON structure:
{"given_name":"string or null","family_name":"string or null","display_name":"string or null","credentials":"string or null","is_physician":true,"is_specialist":true,"board_certified":true,"hospital_affiliation":"string or null","location":"City, ST or null","country_code":"US, GB, IN etc or null","confidence":"high|medium|low","reasoning":"brief explanation"}`

func systemPrompt(specialty string) string {
	return fmt.Sprintf(systemPromptTmpl, specialty)
}

func userPrompt(c model.Candidate, descriptionChars int) string {
	ch := c.Channel

	handle := ch.Handle
	if handle == "" {
		handle = "none"
	}
	country := "unknown"
	if ch.Country != nil && *ch.Country != "" {
		country = *ch.Country
	}
	subs := fmt.Sprintf("%d", ch.Subscribers)
	if ch.ReachHidden() {
		subs = "hidden"
	}

	var titles []string
	for _, t := range c.VideoTitles(5) {
		titles = append(titles, "- "+t)
	}
	videos := strings.Join(titles, "\n")
	if videos == "" {
		videos = "none available"
	}

	return fmt.Sprintf(userPromptTmpl,
		ch.Title, handle, descriptionChars, truncate(ch.Description, descriptionChars),
		subs, country, videos)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
