package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// CertificateDocument carries everything the renderer needs; the snapshot fields
// come straight from the certificate record so rendering never requires a live
// event or user lookup.
type CertificateDocument struct {
	ParticipantName string
	EventTitle      string
	ValidationCode  string
	IssuedAt        time.Time
}

// CertificatePDF renders attendance certificates with an embedded validation QR.
type CertificatePDF struct {
	validationURL string
}

// NewCertificatePDF constructs the renderer. validationURL is the public page
// prefix the QR code points at.
func NewCertificatePDF(validationURL string) *CertificatePDF {
	return &CertificatePDF{validationURL: validationURL}
}

// Render produces the certificate as PDF bytes.
func (e *CertificatePDF) Render(doc CertificateDocument) ([]byte, error) {
	if doc.ValidationCode == "" {
		return nil, fmt.Errorf("certificate requires a validation code")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	width, height := pdf.GetPageSize()

	pdf.SetLineWidth(1.5)
	pdf.SetDrawColor(51, 51, 204)
	pdf.Rect(10, 10, width-20, height-20, "D")

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetY(40)
	pdf.CellFormat(0, 12, "CERTIFICADO DE PARTICIPACAO", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.Ln(10)
	pdf.CellFormat(0, 9, "Certificamos que", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 11, doc.ParticipantName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 9, "participou com exito do evento:", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, doc.EventTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(20, height-50)
	pdf.CellFormat(0, 6, fmt.Sprintf("Data de Emissao: %s", doc.IssuedAt.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.SetX(20)
	pdf.CellFormat(0, 6, fmt.Sprintf("Codigo de Validacao: %s", doc.ValidationCode), "", 1, "L", false, 0, "")

	if err := e.embedQR(pdf, doc.ValidationCode, width, height); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *CertificatePDF) embedQR(pdf *gofpdf.Fpdf, code string, width, height float64) error {
	target := fmt.Sprintf("%s/%s", e.validationURL, code)
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode validation qr: %w", err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("validation-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("validation-qr", width-55, height-60, 35, 35, false, opts, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(width-57, height-24)
	pdf.CellFormat(39, 4, "Validar Certificado", "", 0, "C", false, 0, "")
	return pdf.Error()
}
