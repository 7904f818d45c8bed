package service

import (
	"testing"

	"homefinance/config"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{})
}

func TestGenerateInvitationEmailBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateInvitationEmailBody("张三", "张家", "https://example.com/invite?token=abc")
	assert.Contains(t, body, "张三")
	assert.Contains(t, body, "张家")
	assert.Contains(t, body, "https://example.com/invite?token=abc")
	assert.Contains(t, body, "接受邀请")
	assert.Contains(t, body, "7 天")
}

func TestGenerateResetEmailBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateResetEmailBody("李四", "https://example.com/reset?token=abc")
	assert.Contains(t, body, "李四")
	assert.Contains(t, body, "https://example.com/reset?token=abc")
	assert.Contains(t, body, "重置密码")
	assert.Contains(t, body, "30 分钟")
}

func TestSendEmailDisabled(t *testing.T) {
	s := newTestEmailService()

	// 邮件服务未启用时直接报错，不尝试连接 SMTP
	err := s.SendInvitationEmail("a@example.com", "张三", "张家", "https://example.com")
	assert.Error(t, err)
	err = s.SendPasswordResetEmail("a@example.com", "李四", "https://example.com")
	assert.Error(t, err)
	err = s.SendTestEmail("a@example.com")
	assert.Error(t, err)
}
