package notify

import "html/template"

type templateData struct {
	ActionURL string
	Token     string
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[string]emailTemplate{
	ActionSignup: {
		subject: "Bem-vindo ao Figurinha Studio! Confirme seu cadastro",
		body: template.Must(template.New("signup").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; background: #f6f9fc;">
  <h1>Bem-vindo ao Figurinha Studio!</h1>
  <p>Obrigado por se cadastrar! Clique no botão abaixo para confirmar seu email e começar a criar seus pacotes de figurinhas personalizados.</p>
  <p><a href="{{.ActionURL}}" style="background: #8b5cf6; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Confirmar meu cadastro</a></p>
  <p>Ou copie e cole este código de confirmação:</p>
  <code>{{.Token}}</code>
  <p style="color: #666; font-size: 12px;">Se você não criou uma conta, ignore este email.</p>
</body>
</html>`)),
	},
	ActionRecovery: {
		subject: "Recuperação de senha - Figurinha Studio",
		body: template.Must(template.New("recovery").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; background: #f6f9fc;">
  <h1>Recuperação de Senha</h1>
  <p>Recebemos uma solicitação para redefinir a senha da sua conta no Figurinha Studio.</p>
  <p>Clique no botão abaixo para criar uma nova senha:</p>
  <p><a href="{{.ActionURL}}" style="background: #8b5cf6; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Redefinir minha senha</a></p>
  <p>Ou copie e cole este código de recuperação:</p>
  <code>{{.Token}}</code>
  <p style="color: #666; font-size: 12px;">Se você não solicitou a recuperação, ignore este email.</p>
</body>
</html>`)),
	},
}
