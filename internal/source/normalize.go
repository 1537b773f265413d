package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"trivia-quiz-service/internal/domain"
)

var (
	fenceMarker = regexp.MustCompile("```(?:json)?\\n?")
	objectArray = regexp.MustCompile(`\[\s*\{[\s\S]*\}\s*\]`)
)

// Sanitize strips code-fence markers and surrounding prose, keeping the
// outermost array-of-objects substring when one exists.
func Sanitize(text string) string {
	cleaned := fenceMarker.ReplaceAllString(strings.TrimSpace(text), "")
	if m := objectArray.FindString(cleaned); m != "" {
		cleaned = m
	}
	return strings.TrimSpace(cleaned)
}

// Parse turns a raw generator response into a validated question set. Any
// defect rejects the whole payload; nothing is repaired.
func Parse(text string) (domain.QuestionSet, error) {
	cleaned := Sanitize(text)
	if cleaned == "" {
		return domain.QuestionSet{}, fmt.Errorf("%w: empty payload", domain.ErrSourceParse)
	}

	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(cleaned))
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: %w", domain.ErrSourceParse, err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: %w", domain.ErrSourceParse, err)
	}
	if err := schema.Validate(instance); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: %w", domain.ErrSourceParse, err)
	}

	var questions []domain.Question
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: %w", domain.ErrSourceParse, err)
	}
	set := domain.QuestionSet{Origin: domain.OriginRemote, Questions: questions}
	if err := set.Validate(); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: %w", domain.ErrSourceParse, err)
	}
	return set, nil
}

// Normalize always returns a usable set. When the fetch failed or the payload
// is invalid it returns fallback together with the reason.
func Normalize(text string, fetchErr error, fallback domain.QuestionSet) (domain.QuestionSet, error) {
	if fetchErr != nil {
		if !errors.Is(fetchErr, domain.ErrSourceFetch) {
			fetchErr = fmt.Errorf("%w: %w", domain.ErrSourceFetch, fetchErr)
		}
		return asFallback(fallback), fetchErr
	}
	set, err := Parse(text)
	if err != nil {
		return asFallback(fallback), err
	}
	return set, nil
}

func asFallback(set domain.QuestionSet) domain.QuestionSet {
	out := set.Clone()
	out.Origin = domain.OriginFallback
	return out
}
