// Package repository hosts the persistence backends. Each backend lives in
// its own subpackage (memory, redis, mongo, firestore) and satisfies
// interfaces.Repository; the shared behavior tests in this package run
// against all of them.
package repository
