package bot

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"seo-assistant/internal/usecase"
)

const (
	CallbackCreateDescription = "create_description"
	CallbackHelp              = "help"
)

const welcomeTemplate = `🤖 Привет, %s!

Я - SEO-ассистент для создания описаний товаров. Я помогу тебе создать профессиональные, SEO-оптимизированные описания для любых товаров.

📝 **Как пользоваться:**
1. Отправь мне описание товара или его название
2. Я создам структурированное SEO-описание
3. Получи готовый текст с ключевыми словами

🚀 **Начнем?** Просто отправь мне описание товара!`

const helpText = `📚 **Помощь по использованию бота**

**Основные команды:**
/start - Запустить бота
/help - Показать эту справку
/status - Проверить статус мониторинга

**Как создать описание:**
1. Отправь название товара или его краткое описание
2. Бот создаст структурированное SEO-описание
3. Получи готовый текст с ключевыми словами

**Примеры запросов:**
• "Механическая клавиатура для программистов"
• "Беспроводные наушники с шумоподавлением"
• "Умные часы для спорта"

**Формат результата:**
• Название товара
• Краткое описание
• Полное описание
• Преимущества
• Характеристики
• SEO-ключевые слова`

// Shown from the inline button. The last example has no closing quote.
const callbackHelpText = `📚 **Помощь по использованию бота**

**Как создать описание:**
1. Отправь название товара или его краткое описание
2. Бот создаст структурированное SEO-описание
3. Получи готовый текст с ключевыми словами

**Примеры запросов:**
• "Механическая клавиатура для программистов"
• "Беспроводные наушники с шумоподавлением"
• "Умные часы для спорта`

const (
	statusEnabledText  = "✅ **Мониторинг активен**\n\nВсе запросы отслеживаются в Langfuse для анализа производительности."
	statusDisabledText = "⚠️ **Мониторинг отключен**\n\nДобавьте ключи Langfuse в .env файл для включения мониторинга."

	processingText   = "🔄 Обрабатываю запрос..."
	resultPrefix     = "📝 **SEO-описание готово:**\n\n"
	anotherOneText   = "Хочешь создать еще одно описание?"
	promptText       = "📝 Отправь мне описание товара или его название, и я создам SEO-описание!"
	generationFailed = "❌ Произошла ошибка при генерации описания: "
)

func welcomeText(firstName string) string {
	return fmt.Sprintf(welcomeTemplate, firstName)
}

func statusText(tracingEnabled bool) string {
	if tracingEnabled {
		return statusEnabledText
	}
	return statusDisabledText
}

// errorText renders a generation failure with the raw provider message.
func errorText(err error) string {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		return generationFailed + ucErr.Cause()
	}
	return generationFailed + err.Error()
}

func welcomeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 Создать описание", CallbackCreateDescription)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("ℹ️ Помощь", CallbackHelp)),
	)
}

func anotherOneKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 Создать еще одно", CallbackCreateDescription)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("ℹ️ Помощь", CallbackHelp)),
	)
}
