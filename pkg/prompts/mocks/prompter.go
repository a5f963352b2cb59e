// Code generated manually for testing. Update as needed.

package mocks

import (
	"github.com/stretchr/testify/mock"
)

// Prompter is a mock implementation of prompts.Prompter
type Prompter struct {
	mock.Mock
}

func (m *Prompter) CaptureExistingFilepath(promptStr string) (string, error) {
	args := m.Called(promptStr)
	return args.String(0), args.Error(1)
}

func (m *Prompter) CaptureYesNo(promptStr string) (bool, error) {
	args := m.Called(promptStr)
	return args.Bool(0), args.Error(1)
}

func (m *Prompter) CaptureNoYes(promptStr string) (bool, error) {
	args := m.Called(promptStr)
	return args.Bool(0), args.Error(1)
}

func (m *Prompter) CaptureList(promptStr string, options []string) (string, error) {
	args := m.Called(promptStr, options)
	return args.String(0), args.Error(1)
}

func (m *Prompter) CaptureString(promptStr string) (string, error) {
	args := m.Called(promptStr)
	return args.String(0), args.Error(1)
}

func (m *Prompter) CaptureStringAllowEmpty(promptStr string) (string, error) {
	args := m.Called(promptStr)
	return args.String(0), args.Error(1)
}

func (m *Prompter) CaptureIndex(promptStr string, options []any) (int, error) {
	args := m.Called(promptStr, options)
	return args.Int(0), args.Error(1)
}

func (m *Prompter) CaptureUint64(promptStr string) (uint64, error) {
	args := m.Called(promptStr)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *Prompter) CaptureUint32(promptStr string) (uint32, error) {
	args := m.Called(promptStr)
	return args.Get(0).(uint32), args.Error(1)
}

func (m *Prompter) CaptureFloat(promptStr string, validator func(float64) error) (float64, error) {
	args := m.Called(promptStr, validator)
	return args.Get(0).(float64), args.Error(1)
}

func (m *Prompter) CaptureValidatedString(promptStr string, validator func(string) error) (string, error) {
	args := m.Called(promptStr, validator)
	return args.String(0), args.Error(1)
}
