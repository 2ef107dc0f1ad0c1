// Package tui renders paperbar's terminal output: status lines, record
// tables and the progress spinner shown while tasks are generated.
//
// Colour is dropped automatically when the destination is not a terminal,
// so the same helpers serve interactive use and tests.
package tui
