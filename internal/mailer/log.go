package mailer

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// Log is the development default: messages go to the process log instead of
// a real inbox.
type Log struct {
	log *zap.Logger
	seq atomic.Int64
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Send(toEmail, toName, subject, text, html string) (string, error) {
	id := fmt.Sprintf("log-%d", l.seq.Add(1))
	l.log.Info("mail (log transport)",
		zap.String("message_id", id),
		zap.String("to", toEmail),
		zap.String("to_name", toName),
		zap.String("subject", subject),
		zap.String("text", text),
	)
	return id, nil
}
