package metadata

import (
	"fmt"
	"strconv"
	"strings"

	rdrerrors "rdrupload/internal/errors"
	"rdrupload/internal/models"
)

// Separator splits multi-valued cells. Tokens are not trimmed.
const Separator = ";"

// Author is one entry of the article's author list.
type Author struct {
	Name string `json:"name"`
}

// SplitAuthors turns "A;B" into [{name: A}, {name: B}]. Names are not
// split into given and family parts.
func SplitAuthors(authors string) []Author {
	parts := strings.Split(authors, Separator)
	structured := make([]Author, 0, len(parts))
	for _, name := range parts {
		structured = append(structured, Author{Name: name})
	}
	return structured
}

// SplitCategories parses "1;2;3" into category IDs. Any token that is not
// an integer literal fails the whole cell.
func SplitCategories(categories string) ([]int, error) {
	parts := strings.Split(categories, Separator)
	structured := make([]int, 0, len(parts))
	for _, token := range parts {
		id, err := strconv.Atoi(token)
		if err != nil {
			return nil, &rdrerrors.FieldError{
				Field: models.ColCategories,
				Value: token,
				Err:   fmt.Errorf("%w: %w", rdrerrors.ErrInvalidCategory, err),
			}
		}
		structured = append(structured, id)
	}
	return structured, nil
}

func SplitKeywords(keywords string) []string {
	return strings.Split(keywords, Separator)
}

func SplitReferences(references string) []string {
	return strings.Split(references, Separator)
}

func SplitQALogs(qalogs string) []string {
	return strings.Split(qalogs, Separator)
}
