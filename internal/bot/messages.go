package bot

const (
	msgSessionError = "Não foi possível carregar a comparação. Tente /start."
	msgUnknownCmd   = "Comando desconhecido. Use /help para ver os comandos."
	msgNoRow        = "Essa linha não existe."
	msgExportError  = "Não foi possível gerar a planilha."
	msgStatsError   = "Não foi possível carregar as estatísticas."
	msgStatsOff     = "As estatísticas estão desativadas."

	msgQuickHint = "Para preencher uma linha envie: <linha> <preço> <quantidade>, por exemplo 1 10,50 2. " +
		"Ou toque em ✏️ para editar."

	msgHelp = `Compare o preço por quilo ou por litro de vários produtos.

/start - nova comparação
/add - adicionar linha
/remove - remover a última linha
/clear - limpar todos os valores
/weight - comparar por peso
/volume - comparar por volume
/small - alternar quantidades entre kg/L e g/ml
/export - baixar a comparação em Excel
/cancel - cancelar a edição
/help - mostrar esta ajuda

Envie "<linha> <preço> <quantidade>" para preencher uma linha de uma vez,
ou "<preço> <quantidade>" para preencher a próxima linha vazia.`
)

const (
	cancelText = "❌ Cancelar"

	msgWelcome      = "👋 Olá! Digite preço e quantidade de cada produto e eu mostro qual sai mais barato."
	msgEditPrice    = "Linha %d: envie o preço (%s)."
	msgEditAmount   = "Linha %d: envie a quantidade (%s)."
	msgEditCanceled = "Edição cancelada."
	msgNothingToCut = "A comparação precisa de pelo menos uma linha."
	msgNotAdmin     = "Comando disponível apenas para administradores."
)
