package notify

import (
	"context"
	"fmt"

	"github.com/stockit/inventory-service/internal/store"
	"github.com/stockit/inventory-service/pkg/config"
	"github.com/wneessen/go-mail"
)

const lowStockSubject = "One of your products is running low on stock!"

// MailNotifier sends low-stock alerts over SMTP to a configured recipient.
type MailNotifier struct {
	client *mail.Client
	from   string
	to     string
}

// NewMailNotifier builds an SMTP client from the given configuration.
func NewMailNotifier(cfg config.SMTPConfig) (*MailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &MailNotifier{
		client: client,
		from:   cfg.From,
		to:     cfg.To,
	}, nil
}

// NotifyIfLowStock sends a plain-text alert when the product's quantity is at
// or below its threshold. Products above the threshold are skipped.
func (n *MailNotifier) NotifyIfLowStock(ctx context.Context, product store.Product) error {
	if !lowStock(product) {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(n.to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(lowStockSubject)
	msg.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("Your product %s is running low on stock. The current quantity is %d", product.Name, product.Quantity))

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send low stock alert: %w", err)
	}
	return nil
}
