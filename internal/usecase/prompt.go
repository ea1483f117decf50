package usecase

import "seo-assistant/internal/domain"

// SystemInstruction is sent unchanged as the first message of every
// description request.
const SystemInstruction = `Составь SEO-оптимизированное описание для товара, следуя пошаговому рассуждению:

Шаг 1: Определи целевую аудиторию товара.
Шаг 2: Перечисли 3–4 ключевых преимущества товара.
Шаг 3: Включи ключевые слова естественным образом в текст.
Шаг 4: Сформулируй призыв к действию.
Шаг 5: Объедини всё в связный текст объёмом 150–200 слов.

Ограничение: до 500 слов.
Проверь текст на отсутствие противоречий и повторов.

Формат вывода:
🔹 **Название товара:**
[краткое и ёмкое название с УТП]

🔹 **Краткое описание (1–2 предложения):**
[одно сильное преимущество, мотивирующее купить]

🔹 **Полное описание (5–7 предложений):**
[описание функций, удобства, выгоды и сценария использования; ориентировано на покупателя]

🔹 **Преимущества:**
- [пункт 1]
- [пункт 2]
- [пункт 3]
- [пункт 4]

🔹 **Характеристики:**
- [параметр: значение]
- [параметр: значение]
- [параметр: значение]
- [параметр: значение]

🔹 **SEO-ключевые слова:**
[через запятую]`

// SectionHeaders are the labels of the six output sections, in order.
var SectionHeaders = []string{
	"Название товара",
	"Краткое описание",
	"Полное описание",
	"Преимущества",
	"Характеристики",
	"SEO-ключевые слова",
}

// BuildMessages pairs the fixed instruction with the user's text. The text is
// passed through as is, empty or not.
func BuildMessages(userText string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: SystemInstruction},
		{Role: domain.RoleUser, Content: userText},
	}
}
