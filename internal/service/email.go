package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"energy-server/internal/config"
)

// EmailService 邮件服务
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	baseURL  string
}

// NewEmailService 创建邮件服务
func NewEmailService() *EmailService {
	cfg := config.Get()
	return &EmailService{
		host:     cfg.Email.SMTPHost,
		port:     cfg.Email.SMTPPort,
		username: cfg.Email.Username,
		password: cfg.Email.Password,
		from:     cfg.Email.From,
		baseURL:  cfg.Email.BaseURL,
	}
}

// SendEmail 发送邮件
func (s *EmailService) SendEmail(to, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("邮件服务未配置")
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	// 支持 TLS
	if s.port == 465 {
		return s.sendEmailTLS(to, subject, body)
	}

	return smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg))
}

// sendEmailTLS 通过 TLS 发送邮件
func (s *EmailService) sendEmailTLS(to, subject, body string) error {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         s.host,
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err = client.Auth(auth); err != nil {
		return err
	}

	if err = client.Mail(s.from); err != nil {
		return err
	}
	if err = client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)

	_, err = w.Write([]byte(msg))
	if err != nil {
		return err
	}

	return w.Close()
}

// 邀请邮件模板
const invitationTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1890ff; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { padding: 20px; text-align: center; color: #999; font-size: 12px; }
        .btn { display: inline-block; padding: 10px 20px; background: #1890ff; color: white; text-decoration: none; border-radius: 4px; }
        .warning { color: #ff4d4f; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>组织邀请</h1>
        </div>
        <div class="content">
            <p>您好：</p>
            <p><strong>{{.InviterName}}</strong> 邀请您加入组织 <strong>{{.OrgName}}</strong>：</p>
            <ul>
                <li>角色：{{.RoleName}}</li>
                <li>有效期至：<span class="warning">{{.ExpiresAt}}</span></li>
            </ul>
            <p>点击下方按钮接受邀请，过期后需要重新邀请。</p>
            <p style="text-align: center; margin-top: 30px;">
                <a href="{{.AcceptURL}}" class="btn">接受邀请</a>
            </p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复。</p>
        </div>
    </div>
</body>
</html>
`

// InvitationEmailData 邀请邮件数据
type InvitationEmailData struct {
	InviterName string
	OrgName     string
	RoleName    string
	ExpiresAt   string
	AcceptURL   string
}

// SendInvitation 发送组织邀请邮件
func (s *EmailService) SendInvitation(to, token string, data InvitationEmailData) error {
	if data.AcceptURL == "" {
		data.AcceptURL = fmt.Sprintf("%s/invite/%s", s.baseURL, token)
	}

	tmpl, err := template.New("invitation").Parse(invitationTemplate)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}

	subject := fmt.Sprintf("【组织邀请】%s 邀请您加入 %s", data.InviterName, data.OrgName)
	return s.SendEmail(to, subject, buf.String())
}

// 共享完成模板
const sharingCompletedTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #52c41a; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { padding: 20px; text-align: center; color: #999; font-size: 12px; }
        .success { color: #52c41a; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>能源共享已完成</h1>
        </div>
        <div class="content">
            <p>尊敬的用户：</p>
            <p>能源共享 <strong>{{.SharingCode}}</strong> 已完成交付：</p>
            <ul>
                <li>约定电量：{{.EnergyAmount}} kWh</li>
                <li>实际交付：{{.DeliveredAmount}} kWh</li>
                <li>应付金额：{{.TotalAmount}} 元</li>
                <li>完成时间：{{.CompletedAt}}</li>
            </ul>
            <p class="success">请及时完成结算，并对本次共享进行评价。</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复。</p>
        </div>
    </div>
</body>
</html>
`

// SharingCompletedData 共享完成通知数据
type SharingCompletedData struct {
	SharingCode     string
	EnergyAmount    string
	DeliveredAmount string
	TotalAmount     string
	CompletedAt     string
}

// SendSharingCompleted 发送共享完成通知
func (s *EmailService) SendSharingCompleted(to string, data SharingCompletedData) error {
	tmpl, err := template.New("sharing_completed").Parse(sharingCompletedTemplate)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}

	subject := fmt.Sprintf("【共享完成】能源共享 %s 已完成交付", data.SharingCode)
	return s.SendEmail(to, subject, buf.String())
}
