package model

// Состояние статистики по одному варианту игры
type VariantState struct {
	TotalRounds   int64 // Сколько всего раундов завершено
	TotalWagered  int64 // Сумма всех ставок
	TotalReturned int64 // Сумма всех выплат

	CurrentRTP float64 // Текущий RTP = (TotalReturned/TotalWagered)*100

	RoundWindow []RoundResult // Окно последних раундов для анализа
	WindowRTP   float64       // RTP в окне последних раундов
}

// Результат раунда для окна
type RoundResult struct {
	Wagered  int64
	Returned int64
}
