package service

import (
	"fmt"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(payload string) ([]byte, error)
}

type DefaultQRGenerator struct {
	Size int
}

func (g DefaultQRGenerator) Generate(payload string) ([]byte, error) {
	size := g.Size
	if size == 0 {
		size = 256
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}

type BankAccount struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
}

type PaymentInstructions struct {
	Method      domain.PaymentMethod `json:"method"`
	Title       string               `json:"title"`
	Steps       []string             `json:"steps"`
	Amount      decimal.Decimal      `json:"amount"`
	AmountLabel string               `json:"amount_label"`
	QRCodePNG   []byte               `json:"qr_code_png,omitempty"`
	Bank        *BankAccount         `json:"bank,omitempty"`
}

// InstructionProvider renders the static how-to-pay content. The choice of
// method changes only what is shown, never how the confirmation is submitted.
type InstructionProvider struct {
	QR           QRGenerator
	QRISPayload  string
	Bank         BankAccount
	MerchantName string
}

func (p InstructionProvider) For(method domain.PaymentMethod, order *domain.Order) (PaymentInstructions, error) {
	instructions := PaymentInstructions{Method: method}
	if order != nil {
		instructions.Amount = order.TotalPrice
		instructions.AmountLabel = domain.FormatRupiah(order.TotalPrice)
	}

	switch method {
	case domain.PaymentQRIS:
		instructions.Title = "Pay with QRIS"
		instructions.Steps = []string{
			"Open any banking or e-wallet app that supports QRIS.",
			fmt.Sprintf("Scan the QR code for %s.", p.merchant()),
			fmt.Sprintf("Enter exactly %s and complete the payment.", instructions.AmountLabel),
			"Take a screenshot of the successful payment and upload it below.",
		}
		if p.QR != nil && p.QRISPayload != "" {
			png, err := p.QR.Generate(p.QRISPayload)
			if err != nil {
				return PaymentInstructions{}, fmt.Errorf("render qris code: %w", err)
			}
			instructions.QRCodePNG = png
		}
	case domain.PaymentBankTransfer:
		bank := p.Bank
		instructions.Title = "Pay by bank transfer"
		instructions.Bank = &bank
		instructions.Steps = []string{
			fmt.Sprintf("Transfer %s to %s account %s (%s).", instructions.AmountLabel, bank.BankName, bank.AccountNumber, bank.AccountHolder),
			"Use your order code as the transfer description.",
			"Upload the transfer receipt below.",
		}
	default:
		return PaymentInstructions{}, ErrUnsupportedMethod
	}
	return instructions, nil
}

func (p InstructionProvider) merchant() string {
	if p.MerchantName == "" {
		return "the merchant"
	}
	return p.MerchantName
}
