package service

import (
	"testing"

	"moneybook/config"

	"github.com/stretchr/testify/assert"
)

func TestSendPasswordResetEmailDisabled(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})

	err := svc.SendPasswordResetEmail("a@b.com", "tester", "http://localhost/reset?token=x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "未启用")
}
