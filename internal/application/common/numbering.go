package common

import (
	"context"
	"fmt"
	"time"
)

// NumberCounter counts existing document numbers that start with prefix-
type NumberCounter func(ctx context.Context, prefix string) (int64, error)

// NextNumber returns KIND-YYYYMMDD-N where N is one more than the numbers
// already issued for that day. Two concurrent writers can compute the same
// N; the unique index on the number column rejects the second.
func NextNumber(ctx context.Context, kind string, now time.Time, count NumberCounter) (string, error) {
	prefix := kind + "-" + now.UTC().Format("20060102")
	n, err := count(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count %s numbers: %w", kind, err)
	}
	return fmt.Sprintf("%s-%d", prefix, n+1), nil
}
