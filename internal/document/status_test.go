package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvoiceTransitions(t *testing.T) {
	require.NoError(t, ValidateTransition(TypeInvoice, StatusBorrador, StatusCreada))
	require.NoError(t, ValidateTransition(TypeInvoice, StatusCreada, StatusEnviada))
	require.NoError(t, ValidateTransition(TypeInvoice, StatusEnviada, StatusAbonada))
	require.NoError(t, ValidateTransition(TypeInvoice, StatusAbonada, StatusPagada))
	require.NoError(t, ValidateTransition(TypeInvoice, StatusEnviada, StatusIncobrable))

	// No path backwards or out of a terminal state.
	require.ErrorIs(t, ValidateTransition(TypeInvoice, StatusPagada, StatusEnviada), ErrInvalidTransition)
	require.ErrorIs(t, ValidateTransition(TypeInvoice, StatusAceptada, StatusBorrador), ErrInvalidTransition)
	require.ErrorIs(t, ValidateTransition(TypeInvoice, StatusRechazada, StatusCreada), ErrInvalidTransition)
	require.ErrorIs(t, ValidateTransition(TypeInvoice, StatusBorrador, StatusPagada), ErrInvalidTransition)
}

func TestQuoteTransitions(t *testing.T) {
	require.NoError(t, ValidateTransition(TypeQuote, StatusEnviada, StatusNegociacion))
	require.NoError(t, ValidateTransition(TypeQuote, StatusNegociacion, StatusAceptada))
	require.NoError(t, ValidateTransition(TypeQuote, StatusSeguimiento, StatusRechazada))

	// Negociacion and payment statuses are not part of the other machines.
	require.ErrorIs(t, ValidateTransition(TypeInvoice, StatusEnviada, StatusNegociacion), ErrInvalidTransition)
	require.ErrorIs(t, ValidateTransition(TypeQuote, StatusEnviada, StatusAbonada), ErrInvalidTransition)
	require.ErrorIs(t, ValidateTransition(TypeQuote, StatusEnviada, StatusPagada), ErrInvalidTransition)
}

func TestExpenseTransitions(t *testing.T) {
	require.NoError(t, ValidateTransition(TypeExpense, StatusBorrador, StatusPagada))
	require.NoError(t, ValidateTransition(TypeExpense, StatusCreada, StatusPagada))
	require.ErrorIs(t, ValidateTransition(TypeExpense, StatusCreada, StatusEnviada), ErrInvalidTransition)
}

func TestIsTerminal(t *testing.T) {
	require.True(t, IsTerminal(TypeInvoice, StatusPagada))
	require.True(t, IsTerminal(TypeInvoice, StatusRechazada))
	require.True(t, IsTerminal(TypeInvoice, StatusIncobrable))
	require.False(t, IsTerminal(TypeInvoice, StatusAbonada))
	require.True(t, IsTerminal(TypeQuote, StatusAceptada))
	require.False(t, IsTerminal(TypeQuote, StatusNegociacion))
	require.True(t, IsTerminal(TypeExpense, StatusPagada))
}

func TestValidStatus(t *testing.T) {
	require.True(t, ValidStatus(TypeInvoice, StatusIncobrable))
	require.False(t, ValidStatus(TypeInvoice, StatusNegociacion))
	require.True(t, ValidStatus(TypeQuote, StatusNegociacion))
	require.False(t, ValidStatus(TypeExpense, StatusSeguimiento))
}
