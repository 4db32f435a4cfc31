package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ymbot/internal/yandex"
)

// searchKeyboard строит клавиатуру страницы результатов: по кнопке на
// трек и строку пагинации под ними
func searchKeyboard(list yandex.TrackList, page int, query string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, list.Count+1)

	for _, track := range list.Tracks {
		label := fmt.Sprintf("%s - %s", track.ArtistLine(), track.Title)
		data := fmt.Sprintf("track:%d:%d", track.ID, track.Albums[0].ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}

	if pagination := paginationRow(page, list.Total, query); len(pagination) > 0 {
		rows = append(rows, pagination)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// paginationRow строит строку перелистывания: назад, номер страницы, вперед
func paginationRow(page, total int, query string) []tgbotapi.InlineKeyboardButton {
	pages := totalPages(total)
	row := make([]tgbotapi.InlineKeyboardButton, 0, 3)

	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"<", fmt.Sprintf("list:%d:%s", page-1, query)))
	}

	row = append(row, tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("[%d/%d]", page+1, pages), "no_action"))

	if (page+1)*chatPageSize < total {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			">", fmt.Sprintf("list:%d:%s", page+1, query)))
	}

	return row
}

// totalPages возвращает число страниц для глобального счетчика совпадений
func totalPages(total int) int {
	pages := (total + chatPageSize - 1) / chatPageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}
