package questions

// статический банк вопросов; трактуется как внешняя read-only таблица
var defaultQuestions = []Question{
	{ID: "bt-1", Category: CategoryBrainteaser, Difficulty: DifficultyEasy,
		Prompt: "У вас есть две веревки, каждая горит ровно час, но неравномерно. Как отмерить 45 минут?",
		Answer: "Поджечь первую с двух концов и вторую с одного; когда первая догорит (30 мин), поджечь второй конец второй (еще 15 мин)."},
	{ID: "bt-2", Category: CategoryBrainteaser, Difficulty: DifficultyMedium,
		Prompt: "Ожидаемое число бросков честной монеты до двух орлов подряд?",
		Answer: "6"},
	{ID: "bt-3", Category: CategoryBrainteaser, Difficulty: DifficultyMedium,
		Prompt: "Вы бросаете кубик, можете принять выпавшее или перебросить один раз. Какова стоимость игры?",
		Answer: "4.25: перебрасываем 1-3, оставляем 4-6."},
	{ID: "bt-4", Category: CategoryBrainteaser, Difficulty: DifficultyHard,
		Prompt: "100 этажей, 2 яйца. Минимальное число бросков, гарантирующее найти критический этаж?",
		Answer: "14"},
	{ID: "bt-5", Category: CategoryBrainteaser, Difficulty: DifficultyHard,
		Prompt: "Три точки равновероятно на окружности. Вероятность, что все в одной полуокружности?",
		Answer: "3/4"},
	{ID: "mm-1", Category: CategoryMentalMath, Difficulty: DifficultyEasy,
		Prompt: "17 x 23?", Answer: "391"},
	{ID: "mm-2", Category: CategoryMentalMath, Difficulty: DifficultyEasy,
		Prompt: "Сколько процентов составляет 36 от 80?", Answer: "45"},
	{ID: "mm-3", Category: CategoryMentalMath, Difficulty: DifficultyMedium,
		Prompt: "48 x 52?", Answer: "2496"},
	{ID: "mm-4", Category: CategoryMentalMath, Difficulty: DifficultyMedium,
		Prompt: "Котировка выросла с 80 до 92. На сколько процентов?", Answer: "15"},
	{ID: "mm-5", Category: CategoryMentalMath, Difficulty: DifficultyHard,
		Prompt: "1/7 в десятичной записи, первые шесть знаков?", Answer: "0.142857"},
	{ID: "fit-1", Category: CategoryFit, Difficulty: DifficultyEasy,
		Prompt: "Почему трейдинг, а не инвестбанкинг?"},
	{ID: "fit-2", Category: CategoryFit, Difficulty: DifficultyMedium,
		Prompt: "Расскажите о решении, которое вы приняли при неполной информации."},
	{ID: "fit-3", Category: CategoryFit, Difficulty: DifficultyMedium,
		Prompt: "Опишите случай, когда вы были неправы. Как вы это поняли?"},
	{ID: "fit-4", Category: CategoryFit, Difficulty: DifficultyHard,
		Prompt: "У вас прибыльная позиция, но тезис сломался. Что делаете?"},
}

var defaultFirms = []Firm{
	{Slug: "prop-hft", Name: "Vertex Trading", Style: "быстрый и техничный",
		Description: "Проп-фирма HFT: упор на устный счет, вероятности и скорость реакции."},
	{Slug: "global-mm", Name: "Meridian Markets", Style: "структурированный",
		Description: "Глобальный маркет-мейкер: теория игр, котирование, управление риском."},
	{Slug: "macro-fund", Name: "Northgate Capital", Style: "разговорный и глубокий",
		Description: "Макро-фонд: рыночная интуиция, сценарное мышление, fit-вопросы."},
}
