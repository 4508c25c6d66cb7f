package cache

import "fmt"

const (
	// idem:checkout:{key} -> "pending" | checkout result JSON
	keyIdemCheckout = "idem:checkout:%s"

	// product:{slug} -> product JSON
	keyProduct = "product:%s"

	pendingMarker = "pending"
)

func IdempotencyKey(key string) string { return fmt.Sprintf(keyIdemCheckout, key) }

func ProductKey(slug string) string { return fmt.Sprintf(keyProduct, slug) }
