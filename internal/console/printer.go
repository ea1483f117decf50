// Package console formats the command-line output of the describe tool.
package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"seo-assistant/internal/usecase"
)

const (
	InputPrompt = "Введите запрос на описание товара: "

	bannerWidth = 60
	resultWidth = 50
)

type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Banner() {
	p.line("🚀 Запуск приложения с мониторингом через Langfuse")
	p.line("%s", strings.Repeat("=", bannerWidth))
}

// TracingStatus closes the banner with the outcome of the connection check.
func (p *Printer) TracingStatus(active bool) {
	if active {
		p.line("📊 Мониторинг активен - все запросы будут отслеживаться в Langfuse")
	} else {
		p.line("⚠️  Мониторинг отключен - приложение будет работать без отслеживания")
	}
	p.line("%s", strings.Repeat("=", bannerWidth))
}

func (p *Printer) TracingNotConfigured() {
	p.line("⚠️  Переменные окружения Langfuse не настроены!")
	p.line("Добавьте в .env файл:")
	p.line("LANGFUSE_PUBLIC_KEY=ваш_публичный_ключ")
	p.line("LANGFUSE_SECRET_KEY=ваш_секретный_ключ")
	p.line("LANGFUSE_HOST=https://cloud.langfuse.com")
}

func (p *Printer) PingResult(err error) {
	if err != nil {
		p.line("❌ Ошибка подключения к Langfuse: %s", Cause(err))
		return
	}
	p.line("✅ Подключение к Langfuse успешно!")
}

// Prompt asks for the product text on the same line.
func (p *Printer) Prompt() {
	_, _ = fmt.Fprint(p.w, InputPrompt)
}

func (p *Printer) Processing() {
	p.line("\n🔄 Обработка запроса...")
}

func (p *Printer) Result(text string, traced bool) {
	sep := strings.Repeat("=", resultWidth)
	p.line("\n%s", sep)
	p.line("📝 Результат:")
	p.line("%s", text)
	p.line("%s", sep)
	if traced {
		p.line("📊 Данные отправлены в Langfuse для мониторинга")
	}
}

func (p *Printer) Failure(err error) {
	p.line("❌ Ошибка: %s", Cause(err))
	p.line("Это может быть связано с недоступностью OpenAI API в вашем регионе.")
}

func (p *Printer) Answer(text string) {
	p.line("Ответ от OpenAI: %s", text)
}

func (p *Printer) AnswerFailed(err error) {
	p.line("Ошибка: %s", Cause(err))
}

// Cause strips the use case wrapper so users see the provider's message.
func Cause(err error) string {
	if err == nil {
		return ""
	}
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		return ucErr.Cause()
	}
	return err.Error()
}
