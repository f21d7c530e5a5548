package token

import "testing"

func TestRevealSignatureRoundTrip(t *testing.T) {
	GenerateSecretKey()

	payload := RevealPayload{AdmirerID: 42, TargetCode: "target-abc"}
	signature, err := GenerateRevealSignature(payload)
	if err != nil {
		t.Fatalf("生成签名失败: %v", err)
	}
	if signature == "" {
		t.Fatal("签名不应为空")
	}

	if !ValidateRevealSignature(payload, signature) {
		t.Fatal("原样的payload应通过校验")
	}
}

func TestRevealSignatureRejectsTampering(t *testing.T) {
	GenerateSecretKey()

	payload := RevealPayload{AdmirerID: 42, TargetCode: "target-abc"}
	signature, err := GenerateRevealSignature(payload)
	if err != nil {
		t.Fatalf("生成签名失败: %v", err)
	}

	if ValidateRevealSignature(RevealPayload{AdmirerID: 43, TargetCode: "target-abc"}, signature) {
		t.Fatal("篡改记录ID的payload不应通过校验")
	}
	if ValidateRevealSignature(RevealPayload{AdmirerID: 42, TargetCode: "target-xyz"}, signature) {
		t.Fatal("篡改目标代号的payload不应通过校验")
	}
	if ValidateRevealSignature(payload, "not-base64!!") {
		t.Fatal("非法的签名编码不应通过校验")
	}
}

func TestKeyRotationInvalidatesOldSignatures(t *testing.T) {
	GenerateSecretKey()
	payload := RevealPayload{AdmirerID: 7, TargetCode: "t"}
	signature, err := GenerateRevealSignature(payload)
	if err != nil {
		t.Fatalf("生成签名失败: %v", err)
	}

	// 密钥只存活于进程内，重新生成后旧签名全部失效
	GenerateSecretKey()
	if ValidateRevealSignature(payload, signature) {
		t.Fatal("换钥后旧签名不应通过校验")
	}
}
