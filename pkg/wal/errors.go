package wal

import "errors"

// ErrBufferExhausted is returned by GetNode when cumulative admission wait
// reaches the configured reject threshold.
var ErrBufferExhausted = errors.New("wal: buffer admission exceeded reject threshold")

// ErrNodeDeletedDuringRegistration is returned by GetNode when the node it
// was registering buffers for was concurrently removed by DeleteNode before
// admission finished.
var ErrNodeDeletedDuringRegistration = errors.New("wal: node deleted while buffers were still being admitted")
