package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"equip-go/internal/models"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

const (
	pageMargin = 20.0
	rowHeight  = 9.0
	colWidth   = 70.0

	fontFamily = "report"
)

// Fonts 报告使用的UTF-8 TrueType字体，Bold为空时沿用Regular
type Fonts struct {
	Regular []byte
	Bold    []byte
}

// DefaultFonts 内置Go字体，覆盖拉丁、希腊和西里尔字符
func DefaultFonts() Fonts {
	return Fonts{Regular: goregular.TTF, Bold: gobold.TTF}
}

// LoadFonts 从文件读取字体，显示中文文件名和类型时需配置含CJK字形的字体
func LoadFonts(regularPath, boldPath string) (Fonts, error) {
	regular, err := readFont(regularPath)
	if err != nil {
		return Fonts{}, err
	}
	fonts := Fonts{Regular: regular}
	if boldPath != "" {
		if fonts.Bold, err = readFont(boldPath); err != nil {
			return Fonts{}, err
		}
	}
	return fonts, nil
}

func readFont(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取报告字体失败: %w", err)
	}
	// fpdf解析失败时只打印不报错，提前校验
	if _, err := sfnt.Parse(b); err != nil {
		return nil, fmt.Errorf("无效的字体文件 %s: %w", path, err)
	}
	return b, nil
}

// Renderer 输出PDF报告
type Renderer struct {
	compress bool
	fonts    Fonts
	now      func() time.Time
}

// NewRenderer 创建报告渲染器
func NewRenderer(compress bool) *Renderer {
	return &Renderer{
		compress: compress,
		fonts:    DefaultFonts(),
		now:      time.Now,
	}
}

// WithFonts 替换报告字体
func (r *Renderer) WithFonts(fonts Fonts) *Renderer {
	if fonts.Bold == nil {
		fonts.Bold = fonts.Regular
	}
	r.fonts = fonts
	return r
}

// WithClock 设置时钟
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// Render 以当前时间生成报告并写入w
func (r *Renderer) Render(w io.Writer, ds *models.Dataset) error {
	now := r.now()
	return r.WritePDF(w, Build(ds, now), now)
}

// RenderText 以当前时间生成纯文本报告
func (r *Renderer) RenderText(w io.Writer, ds *models.Dataset) error {
	return WriteText(w, Build(ds, r.now()))
}

// WritePDF 把报告内容排版为PDF
func (r *Renderer) WritePDF(w io.Writer, doc Document, created time.Time) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(created)
	pdf.SetTitle(doc.Title, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)

	// 文件名和设备类型可能是任意语言，全部文本按UTF-8字体输出
	pdf.AddUTF8FontFromBytes(fontFamily, "", r.fonts.Regular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", r.fonts.Bold)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("加载报告字体失败: %w", err)
	}
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	pdf.SetFont(fontFamily, "B", 18)
	pdf.MultiCell(contentWidth, 10, doc.Title, "", "C", false)
	pdf.Ln(6)

	writeSection(pdf, SummaryHeading, doc.Summary, pageWidth)
	pdf.Ln(8)
	writeSection(pdf, DistributionHeading, doc.Distribution, pageWidth)
	pdf.Ln(8)

	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(contentWidth, 6, doc.Footer, "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("生成PDF失败: %w", err)
	}
	return nil
}

func writeSection(pdf *fpdf.Fpdf, heading string, t Table, pageWidth float64) {
	pdf.SetFont(fontFamily, "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// 表格居中
	left := (pageWidth - colWidth*float64(len(t.Header))) / 2

	pdf.SetFont(fontFamily, "B", 12)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(245, 245, 245)
	pdf.SetX(left)
	for _, h := range t.Header {
		pdf.CellFormat(colWidth, rowHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 11)
	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range t.Rows {
		pdf.SetX(left)
		for _, cell := range row {
			pdf.CellFormat(colWidth, rowHeight, cell, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
}
