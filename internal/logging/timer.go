package logging

import "time"

// Timer tracks the duration of an operation and logs it on Stop.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer begins timing an operation for the given category.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop ends the timer and logs the elapsed duration. Operations slower
// than a second are logged at warn so they stand out.
func (t *Timer) Stop() {
	elapsed := time.Since(t.start)
	l := Get(t.category)
	if elapsed > time.Second {
		l.Warn("%s took %v", t.operation, elapsed)
	} else {
		l.Debug("%s took %v", t.operation, elapsed)
	}
}

// Convenience helpers for hot categories.

// Store logs an info message to the store category.
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreDebug logs a debug message to the store category.
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

// Executor logs an info message to the executor category.
func Executor(format string, args ...interface{}) {
	Get(CategoryExecutor).Info(format, args...)
}

// Planner logs an info message to the planner category.
func Planner(format string, args ...interface{}) {
	Get(CategoryPlanner).Info(format, args...)
}

// Skills logs an info message to the skills category.
func Skills(format string, args ...interface{}) {
	Get(CategorySkills).Info(format, args...)
}
