package extract

import (
	"context"
	"strings"
)

var stubSeparators = strings.NewReplacer(
	"，", "\n", ",", "\n", "、", "\n", "；", "\n", ";", "\n", "。", "\n",
	"还是", "\n", "或者", "\n", "和", "\n",
	" or ", "\n", " and ", "\n",
)

// Stub is an offline Provider that splits the sentence on common list
// separators. It ignores the system prompt.
type Stub struct{}

func (Stub) Complete(ctx context.Context, _, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return stubSeparators.Replace(user), nil
}
