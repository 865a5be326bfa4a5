package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/PANHAVORN22/Mini-mart/internal/config"
)

type EmailNotifier struct {
	client *ses.Client
	sender string
}

// New returns nil without error when SES is not configured, order
// confirmation email is an optional side effect.
func New(ctx context.Context, cfg *config.Config) (*EmailNotifier, error) {
	if cfg.SES_SENDER == "" || cfg.AWS_REGION == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWS_REGION),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS_ACCESS_KEY, cfg.AWS_SECRET_KEY, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &EmailNotifier{
		client: ses.NewFromConfig(awsCfg),
		sender: cfg.SES_SENDER,
	}, nil
}

func (n *EmailNotifier) SendOrderConfirmation(ctx context.Context, recipient, customerName string, orderID uint, total float64) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	subject := fmt.Sprintf("Order #%d Confirmation - Thank You for Your Purchase!", orderID)
	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Thank you for your order! Your order #%d has been successfully placed.</p>
            <ul>
                <li>Order ID: %d</li>
                <li>Total Amount: $%.2f</li>
            </ul>
            <p>We'll send you another email when your order ships.</p>
        </body>
        </html>`, customerName, orderID, orderID, total)

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(bodyHTML)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}
