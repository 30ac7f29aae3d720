package messageplane

import (
	"fmt"
	"strconv"
	"strings"
)

// nonceDigits is the zero-padding width that makes lexicographic key
// ordering equivalent to numeric nonce ordering.
const nonceDigits = 20

// messageKey formats the CMS/queue key "<gateway>_<nonce:020>".
func messageKey(gateway string, nonce uint64) string {
	return fmt.Sprintf("%s_%0*d", gateway, nonceDigits, nonce)
}

// nonceSuffix parses the trailing nonce out of a key produced by
// messageKey, for the gateway poller's cursor advance
// (nonce = last_seen_suffix + 1).
func nonceSuffix(key string) (uint64, error) {
	i := strings.LastIndexByte(key, '_')
	if i < 0 {
		return 0, fmt.Errorf("messageplane: key %q has no gateway/nonce separator", key)
	}
	return strconv.ParseUint(key[i+1:], 10, 64)
}

// NextNonce returns the nonce a poller should resume from after having
// seen key as the last message key in a batch: one past key's own nonce.
func NextNonce(key string) (uint64, error) {
	n, err := nonceSuffix(key)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}
