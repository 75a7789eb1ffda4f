package teletext

import "errors"

// ErrCacheMiss is returned by LookupPage when the requested page id is not
// currently resident in the Engine's page cache.
var ErrCacheMiss = errors.New("teletext: page cache miss")
