package flows

// User-facing messages. The bot talks to its audience in Russian.
const (
	textCancelled = "Операция отменена."

	textAskSNILS        = "Пожалуйста, отправьте ваш СНИЛС в формате XXX-XXX-XXX XX."
	textSNILSInvalid    = "Неверный формат СНИЛС. Ожидается XXX-XXX-XXX XX. Попробуйте ещё раз или отправьте /cancel."
	textSNILSSaved      = "Ваш СНИЛС сохранён."
	textSNILSTaken      = "Этот СНИЛС уже привязан к другому аккаунту."
	textSNILSSaveFailed = "Не удалось сохранить СНИЛС. Попробуйте позже."

	textOlympiadAskName        = "Введите название олимпиады."
	textOlympiadAskDate        = "Введите дату проведения в формате ГГГГ-ММ-ДД."
	textOlympiadDateInvalid    = "Неверный формат даты. Ожидается ГГГГ-ММ-ДД, например 2025-03-14. Попробуйте ещё раз или отправьте /cancel."
	textOlympiadAskSubject     = "Введите предмет олимпиады (или «-», если не указан)."
	textOlympiadAskDescription = "Введите описание олимпиады (или «-», если не нужно)."
	textOlympiadSaveFailed     = "Не удалось сохранить олимпиаду. Отправьте описание ещё раз или /cancel_admin_op."

	textResultsListFailed      = "Не удалось загрузить список олимпиад. Попробуйте позже."
	textResultsNoOlympiads     = "Нет доступных олимпиад. Сначала создайте олимпиаду командой /admin_add_olympiad."
	textResultsSelectOlympiad  = "Выберите олимпиаду: отправьте её номер из списка."
	textResultsSelectInvalid   = "Не удалось найти олимпиаду с таким номером. Отправьте номер из списка или /cancel."
	textResultsLookupFailed    = "Не удалось проверить олимпиаду. Отправьте номер ещё раз или /cancel."
	textResultsAskFullName     = "Введите ФИО участника (или «стоп», чтобы завершить ввод)."
	textResultsAskSNILS        = "Введите СНИЛС участника в формате XXX-XXX-XXX XX."
	textResultsAskScore        = "Введите балл участника (целое число)."
	textResultsScoreInvalid    = "Балл должен быть целым числом. Попробуйте ещё раз."
	textResultsAskPlace        = "Введите занятое место (целое число)."
	textResultsPlaceInvalid    = "Место должно быть целым числом. Попробуйте ещё раз."
	textResultsAskDiploma      = "Отправьте ссылку на диплом (или «-», если диплома нет)."
	textResultsSaved           = "Результат сохранён."
	textResultsSaveFailed      = "Не удалось сохранить результат."
	textResultsRetryRecord     = "Запись не сохранена, введите ФИО участника заново (или «стоп», чтобы завершить)."
	textResultsNextParticipant = "Введите ФИО следующего участника (или «стоп», чтобы завершить)."
)
