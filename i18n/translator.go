package i18n

// Translator retrieves localized messages for Issue codes. data provides
// optional metadata to embed in the message (for example "min" or "keys").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "too_small":
			return "小さすぎます"
		case "too_big":
			return "大きすぎます"
		case "invalid_string":
			return "文字列形式が不正です"
		case "invalid_literal":
			return "リテラル値が一致しません"
		case "invalid_enum":
			return "許可された値ではありません"
		case "not_finite":
			return "有限の数値ではありません"
		case "invalid_date":
			return "日時が不正です"
		case "unrecognized_keys":
			return "未知のキーです"
		case "invalid_union":
			return "どの候補にも一致しません"
		case "invalid_discriminator":
			return "判別キーが不正です"
		case "invalid_intersection":
			return "交差結果をマージできません"
		case "uniqueness":
			return "値が重複しています"
		case "parse_error":
			return "解析エラー"
		case "custom":
			return "検証に失敗しました"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required property missing"
		case "too_small":
			return "too small"
		case "too_big":
			return "too big"
		case "invalid_string":
			return "invalid string format"
		case "invalid_literal":
			return "literal value does not match"
		case "invalid_enum":
			return "value is not one of the allowed options"
		case "not_finite":
			return "number is not finite"
		case "invalid_date":
			return "invalid date"
		case "unrecognized_keys":
			return "unrecognized keys"
		case "invalid_union":
			return "value does not match any alternative"
		case "invalid_discriminator":
			return "invalid discriminator value"
		case "invalid_intersection":
			return "intersection results cannot be merged"
		case "uniqueness":
			return "duplicate value"
		case "parse_error":
			return "parse error"
		case "custom":
			return "validation failed"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). Passing nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
