package io

import (
	"errors"

	"github.com/ezrec/s1603/translate"
)

var f = translate.From

var (
	// Image errors
	ErrImageEmpty = errors.New(f("image empty"))
	ErrImageSize  = errors.New(f("image exceeds memory"))
)
