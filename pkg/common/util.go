package common

import "os"

func IsProduction() bool {
	return os.Getenv(EnvKeyGoEnv) == "production"
}

// Mapper applies mapFn to every element, preserving order.
func Mapper[T any, R any](items []T, mapFn func(T) R) []R {
	mapped := make([]R, len(items))
	for i, item := range items {
		mapped[i] = mapFn(item)
	}
	return mapped
}

// Reducer folds items left to right starting from initAcc.
func Reducer[T any, R any](items []T, reduceFn func(R, T) R, initAcc R) R {
	acc := initAcc
	for _, item := range items {
		acc = reduceFn(acc, item)
	}
	return acc
}
