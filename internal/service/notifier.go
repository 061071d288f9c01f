package service

import "github.com/refrain2333/link-ai/internal/domain"

// Notifier receives operational events worth a human's attention.
type Notifier interface {
	LogRegistration(u *domain.User)
	LogError(err error, where string)
}

type nopNotifier struct{}

func (nopNotifier) LogRegistration(*domain.User) {}
func (nopNotifier) LogError(error, string)       {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
